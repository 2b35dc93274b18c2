package gateway

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"
)

// StreamEvents handles GET /events/stream, forwarding lifecycle event
// envelopes over a WebSocket until the client disconnects.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "event stream not available")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	subID := xid.New().String()
	ch := h.publisher.Subscribe(subID, 64)
	defer h.publisher.Unsubscribe(subID)

	// Reader goroutine notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	slog.DebugContext(r.Context(), "event stream opened", slog.String("subscriber", subID))

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case env, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(env); err != nil {
				slog.DebugContext(r.Context(), "event stream write failed",
					slog.String("subscriber", subID),
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
