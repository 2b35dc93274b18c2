package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/pkg/events"
)

// ErrQueueFull indicates the pending speech buffer is at capacity.
var ErrQueueFull = errors.New("speech queue full")

const defaultCapacity = 256

// Item is one queued notification awaiting speech.
type Item struct {
	ID         string
	Text       string
	VoiceID    string
	Agent      string
	EnqueuedAt time.Time
}

// Queue serializes speech delivery through the backend selected at startup.
// Items are spoken strictly in arrival order with at most one Speak in
// flight; a failed item is logged and dropped, never retried and never
// surfaced to the request that queued it.
type Queue struct {
	backend     engine.Backend
	backendName string
	pub         *events.Publisher
	items       chan Item
}

// NewQueue creates a queue in front of the selected backend.
func NewQueue(backend engine.Backend, backendName string, capacity int, pub *events.Publisher) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{
		backend:     backend,
		backendName: backendName,
		pub:         pub,
		items:       make(chan Item, capacity),
	}
}

// Enqueue adds a notification without blocking and returns its ID for
// correlation. When the buffer is at capacity it returns ErrQueueFull.
func (q *Queue) Enqueue(text, voiceID, agent string) (string, error) {
	item := Item{
		ID:         xid.New().String(),
		Text:       text,
		VoiceID:    voiceID,
		Agent:      agent,
		EnqueuedAt: time.Now(),
	}

	select {
	case q.items <- item:
		return item.ID, nil
	default:
		return "", ErrQueueFull
	}
}

// Pending reports the number of items waiting to be spoken.
func (q *Queue) Pending() int {
	return len(q.items)
}

// BackendName returns the name of the backend selected at startup.
func (q *Queue) BackendName() string {
	return q.backendName
}

// Run consumes the queue until the context is cancelled. It is the only
// goroutine that calls Speak, which keeps playback strictly serial.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-q.items:
			q.deliver(ctx, item)
		}
	}
}

func (q *Queue) deliver(ctx context.Context, item Item) {
	q.emit(ctx, events.SpeechStarted, item.ID, &events.SpeechStartedData{
		Text:    item.Text,
		Voice:   item.VoiceID,
		Backend: q.backendName,
	})

	started := time.Now()
	if err := q.speak(ctx, item); err != nil {
		slog.ErrorContext(ctx, "speech delivery failed",
			slog.String("notification_id", item.ID),
			slog.String("backend", q.backendName),
			slog.String("error", err.Error()))
		q.emit(ctx, events.SpeechFailed, item.ID, &events.SpeechFailedData{
			Backend: q.backendName,
			Error:   err.Error(),
		})
		return
	}

	q.emit(ctx, events.SpeechCompleted, item.ID, &events.SpeechCompletedData{
		Text:       item.Text,
		Voice:      item.VoiceID,
		Backend:    q.backendName,
		DurationMs: time.Since(started).Milliseconds(),
	})
}

// speak calls the backend, converting a panic into an error so one bad item
// can never take down the worker.
func (q *Queue) speak(ctx context.Context, item Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return q.backend.Speak(ctx, item.Text, item.VoiceID)
}

func (q *Queue) emit(ctx context.Context, eventType events.EventType, notificationID string, data interface{}) {
	if q.pub == nil {
		return
	}
	if err := q.pub.Emit(ctx, eventType, notificationID, data); err != nil {
		slog.WarnContext(ctx, "event emit failed",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
	}
}
