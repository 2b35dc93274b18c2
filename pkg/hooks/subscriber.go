package hooks

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"

	"github.com/voicenotify/voicenotify/pkg/events"
)

// Subscriber implements queue.SubscribeWorker to route lifecycle events to
// configured hook endpoints.
type Subscriber struct {
	Hooks    []HookConfig
	Executor *Executor
	Pool     workerpool.WorkerPool
}

// Handle is called by frame's pub/sub for each event message.
func (s *Subscriber) Handle(ctx context.Context, _ map[string]string, message []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		util.Log(ctx).WithError(err).Error("hook subscriber: unmarshal envelope")
		return err
	}

	// Never re-deliver hook outcomes; that would loop.
	if env.Type == events.HookResult || env.Type == events.HookError {
		return nil
	}

	req := requestFromEnvelope(env)

	for _, cfg := range s.Hooks {
		if !cfg.Matches(env.Type) {
			continue
		}
		cfg := cfg
		dispatch := func() {
			if _, err := s.Executor.Execute(ctx, cfg, req); err != nil {
				slog.WarnContext(ctx, "hook execution failed",
					slog.String("url", cfg.URL),
					slog.String("event", string(env.Type)),
					slog.String("error", err.Error()))
			}
		}
		if s.Pool != nil {
			if err := s.Pool.Submit(ctx, dispatch); err != nil {
				slog.WarnContext(ctx, "hook pool full", slog.String("url", cfg.URL))
			}
		} else {
			go dispatch()
		}
	}

	return nil
}

// requestFromEnvelope flattens an event envelope into the hook payload shape.
func requestFromEnvelope(env events.Envelope) HookRequest {
	req := HookRequest{
		NotificationID: env.NotificationID,
		Event:          string(env.Type),
	}

	switch env.Type {
	case events.NotificationQueued:
		var d events.NotificationQueuedData
		if err := json.Unmarshal(env.Data, &d); err == nil {
			req.Agent = d.Agent
			req.Backend = d.Backend
		}
	case events.SpeechStarted:
		var d events.SpeechStartedData
		if err := json.Unmarshal(env.Data, &d); err == nil {
			req.Backend = d.Backend
			req.Message = d.Text
		}
	case events.SpeechCompleted:
		var d events.SpeechCompletedData
		if err := json.Unmarshal(env.Data, &d); err == nil {
			req.Backend = d.Backend
			req.Message = d.Text
			req.DurationMs = d.DurationMs
		}
	case events.SpeechFailed:
		var d events.SpeechFailedData
		if err := json.Unmarshal(env.Data, &d); err == nil {
			req.Backend = d.Backend
			req.Error = d.Error
		}
	}

	return req
}
