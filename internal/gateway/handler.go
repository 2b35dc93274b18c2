package gateway

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/voicenotify/voicenotify/internal/playback"
	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/internal/speech/registry"
	"github.com/voicenotify/voicenotify/pkg/events"
	"github.com/voicenotify/voicenotify/pkg/personas"
)

const maxRequestBodySize = 1 << 20 // 1 MiB

// Options carries the handler settings resolved at startup.
type Options struct {
	Port          int
	DefaultVoice  string
	DefaultAgent  string
	CORSOrigin    string
	BackendConfig map[string]string
}

// Handler provides the notification REST endpoints.
type Handler struct {
	queue     *playback.Queue
	backend   engine.Backend
	publisher *events.Publisher
	catalog   *personas.Loader
	limiter   *Limiter
	upgrader  websocket.Upgrader
	opts      Options
}

// NewHandler creates a new notification API handler. The backend is the one
// selected at startup; the health endpoint keeps reporting it regardless of
// later delivery failures.
func NewHandler(q *playback.Queue, backend engine.Backend, publisher *events.Publisher, catalog *personas.Loader, limiter *Limiter, opts Options) *Handler {
	if opts.DefaultAgent == "" {
		opts.DefaultAgent = "pai"
	}
	if limiter == nil {
		limiter = NewLimiter(0, 0)
	}
	return &Handler{
		queue:     q,
		backend:   backend,
		publisher: publisher,
		catalog:   catalog,
		limiter:   limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == opts.CORSOrigin
			},
		},
		opts: opts,
	}
}

// RegisterRoutes registers all notification API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /notify", h.Notify)
	mux.HandleFunc("POST /pai", h.NotifyPersona)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /voices", h.Voices)
	mux.HandleFunc("GET /backends", h.Backends)
	mux.HandleFunc("GET /events/stream", h.StreamEvents)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, StatusResponse{Status: "error", Message: msg})
}

// Notify handles POST /notify
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	h.handleNotify(w, r, "")
}

// NotifyPersona handles POST /pai, defaulting the agent to the configured
// persona.
func (h *Handler) NotifyPersona(w http.ResponseWriter, r *http.Request) {
	h.handleNotify(w, r, h.opts.DefaultAgent)
}

func (h *Handler) handleNotify(w http.ResponseWriter, r *http.Request, fallbackAgent string) {
	if !h.limiter.Allow(clientIdentity(r)) {
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := Validate(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text := Sanitize(req.Message)

	agent := req.Agent
	if agent == "" {
		agent = fallbackAgent
	}

	if req.VoiceEnabled != nil && !*req.VoiceEnabled {
		writeJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Notification received"})
		return
	}

	voiceID, spoken := h.resolveSpeech(r, agent, req.VoiceID, text)

	id, err := h.queue.Enqueue(spoken, voiceID, agent)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Speech queue full")
		return
	}

	if h.publisher != nil {
		_ = h.publisher.Emit(r.Context(), events.NotificationQueued, id, &events.NotificationQueuedData{
			Agent:      agent,
			Voice:      voiceID,
			Backend:    h.queue.BackendName(),
			QueueDepth: h.queue.Pending(),
		})
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Notification queued"})
}

// resolveSpeech picks the voice for a notification and applies the agent's
// persona template to the spoken text. Precedence for the voice: explicit
// request voice, persona voice, configured default.
func (h *Handler) resolveSpeech(r *http.Request, agent, requestVoice, text string) (voiceID, spoken string) {
	voiceID = requestVoice
	spoken = text

	if agent != "" && h.catalog != nil {
		if p, ok := h.catalog.Get(agent); ok {
			if voiceID == "" {
				voiceID = p.VoiceID
			}
			rendered, err := p.Render(personas.SpeechContext{Agent: agent, Message: text})
			if err != nil {
				slog.WarnContext(r.Context(), "persona template failed",
					slog.String("agent", agent),
					slog.String("error", err.Error()))
			} else {
				spoken = rendered
			}
		}
	}

	if voiceID == "" {
		voiceID = h.opts.DefaultVoice
	}
	return voiceID, spoken
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":             "healthy",
		"port":               h.opts.Port,
		"backend":            h.queue.BackendName(),
		"queue_depth":        h.queue.Pending(),
		"backends_available": registry.CheckAvailability(h.opts.BackendConfig),
	}
	for k, v := range h.backend.HealthInfo() {
		if _, exists := resp[k]; !exists {
			resp[k] = v
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Voices handles GET /voices
func (h *Handler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VoicesResponse{
		Backend: h.queue.BackendName(),
		Voices:  h.backend.Voices(),
	})
}

// Backends handles GET /backends
func (h *Handler) Backends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BackendsResponse{
		Active:   h.queue.BackendName(),
		Backends: registry.CheckAvailability(h.opts.BackendConfig),
	})
}

// clientIdentity derives the rate-limit key from the first X-Forwarded-For
// value, falling back to the remote host.
func clientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
