package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pitabwire/frame"
	frameconfig "github.com/pitabwire/frame/config"
	"github.com/pitabwire/frame/workerpool"

	vnconfig "github.com/voicenotify/voicenotify/config"
	"github.com/voicenotify/voicenotify/internal/gateway"
	"github.com/voicenotify/voicenotify/internal/httputil"
	"github.com/voicenotify/voicenotify/internal/playback"
	"github.com/voicenotify/voicenotify/internal/speech/registry"
	"github.com/voicenotify/voicenotify/pkg/events"
	"github.com/voicenotify/voicenotify/pkg/hooks"
	"github.com/voicenotify/voicenotify/pkg/personas"

	// Register speech backends via init().
	_ "github.com/voicenotify/voicenotify/internal/speech/backends/elevenlabs"
	_ "github.com/voicenotify/voicenotify/internal/speech/backends/google"
	_ "github.com/voicenotify/voicenotify/internal/speech/backends/gtranslate"
	_ "github.com/voicenotify/voicenotify/internal/speech/backends/openai"
	_ "github.com/voicenotify/voicenotify/internal/speech/backends/piper"
	_ "github.com/voicenotify/voicenotify/internal/speech/backends/say"
)

func main() {
	ctx := context.Background()

	// Credentials may live in a local .env during development.
	_ = godotenv.Load()

	settings := vnconfig.LoadSettings(settingsPath())
	settings.BridgePort()

	cfg, err := frameconfig.LoadWithOIDC[vnconfig.NotifyConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	settings.Apply(&cfg)

	eventRef := cfg.GetEventsQueueName()
	eventURL := cfg.GetEventsQueueURL()

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("voicenotify"),
		frame.WithRegisterPublisher(eventRef, eventURL),
		frame.WithWorkerPoolOptions(
			workerpool.WithPoolCount(cfg.WorkerPoolCount),
			workerpool.WithSinglePoolCapacity(cfg.WorkerPoolCapacity),
		),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	pub := events.NewPublisher(srv.QueueManager(), "voicenotify", eventRef)

	// --- Speech backend ---
	backendConfig := cfg.BackendSettings()
	backend, backendName, err := registry.LoadBackend(ctx, cfg.BackendPreferences(), backendConfig)
	if err != nil {
		log.Fatalf("selecting speech backend: %v", err)
	}
	defer backend.Close()

	// --- Playback queue: a single worker keeps speech serialized ---
	queue := playback.NewQueue(backend, backendName, cfg.QueueCapacity, pub)
	if err := pool.Submit(ctx, func() { queue.Run(ctx) }); err != nil {
		log.Fatalf("starting playback worker: %v", err)
	}

	// --- Personas ---
	catalog := personas.NewLoader(cfg.PersonaDir)
	if _, err := catalog.LoadAll(); err != nil {
		log.Printf("warning: loading personas: %v", err)
	}
	watchDone := make(chan struct{})
	defer close(watchDone)
	_ = pool.Submit(ctx, func() {
		if err := catalog.WatchAndReload(watchDone); err != nil {
			log.Printf("warning: persona watcher: %v", err)
		}
	})

	// --- HTTP gateway ---
	limiter := gateway.NewLimiter(cfg.RateLimitCount, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	handler := gateway.NewHandler(queue, backend, pub, catalog, limiter, gateway.Options{
		Port:          httpPort(cfg.HTTPPort()),
		DefaultVoice:  cfg.DefaultVoice,
		DefaultAgent:  cfg.DefaultAgent,
		CORSOrigin:    cfg.CORSOrigin,
		BackendConfig: backendConfig,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	httpHandler := httputil.H2CHandler(httputil.RequestLogger(httputil.CORS(cfg.CORSOrigin, mux)))

	if cfg.HookURL != "" {
		hookSub := &hooks.Subscriber{
			Hooks: []hooks.HookConfig{{
				URL:        cfg.HookURL,
				AuthType:   cfg.HookAuthType,
				AuthSecret: cfg.HookAuthSecret,
				TimeoutSec: cfg.HookTimeoutSec,
				Events:     cfg.HookEventTypes(),
			}},
			Executor: hooks.NewExecutor(pub, hooks.CircuitBreakerConfig{
				FailureThreshold: cfg.CBFailThreshold,
				ResetTimeout:     time.Duration(cfg.CBResetTimeoutSec) * time.Second,
			}),
			Pool: pool,
		}
		srv.Init(ctx,
			frame.WithRegisterSubscriber(eventRef+".hooks", eventURL, hookSub),
			frame.WithHTTPHandler(httpHandler),
		)
	} else {
		srv.Init(ctx, frame.WithHTTPHandler(httpHandler))
	}

	slog.InfoContext(ctx, "voicenotify ready",
		slog.String("backend", backendName),
		slog.String("port", cfg.HTTPPort()))

	if err := srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}

func settingsPath() string {
	if p := os.Getenv("SETTINGS_FILE"); p != "" {
		return p
	}
	return "./voicenotify.json"
}

// httpPort extracts the numeric port from frame's ":8080" address form.
func httpPort(addr string) int {
	p, err := strconv.Atoi(strings.TrimPrefix(addr, ":"))
	if err != nil {
		return 8080
	}
	return p
}
