package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/voicenotify/voicenotify/internal/speech/engine"
	"github.com/voicenotify/voicenotify/pkg/events"
)

type speakCall struct {
	text    string
	voice   string
	started time.Time
	ended   time.Time
}

// scriptedBackend records every Speak call and can fail or panic on chosen
// texts. done is closed once want calls have been recorded.
type scriptedBackend struct {
	mu      sync.Mutex
	calls   []speakCall
	failOn  string
	panicOn string
	delay   time.Duration
	done    chan struct{}
	want    int
}

func newScriptedBackend(want int, delay time.Duration) *scriptedBackend {
	return &scriptedBackend{
		delay: delay,
		done:  make(chan struct{}),
		want:  want,
	}
}

func (b *scriptedBackend) IsAvailable() bool { return true }

func (b *scriptedBackend) Speak(_ context.Context, text string, voiceID string) error {
	started := time.Now()
	if b.delay > 0 {
		time.Sleep(b.delay)
	}

	b.mu.Lock()
	b.calls = append(b.calls, speakCall{text: text, voice: voiceID, started: started, ended: time.Now()})
	n := len(b.calls)
	b.mu.Unlock()

	if n == b.want {
		close(b.done)
	}

	if text == b.panicOn {
		panic("backend exploded")
	}
	if text == b.failOn {
		return errors.New("synthesis failed")
	}
	return nil
}

func (b *scriptedBackend) Voices() []engine.Voice        { return nil }
func (b *scriptedBackend) HealthInfo() map[string]string { return map[string]string{} }
func (b *scriptedBackend) Close() error                  { return nil }

func (b *scriptedBackend) recorded() []speakCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]speakCall(nil), b.calls...)
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not drain in time")
	}
}

func TestQueueSpeaksInOrderWithoutOverlap(t *testing.T) {
	backend := newScriptedBackend(3, 10*time.Millisecond)
	q := NewQueue(backend, "scripted", 16, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if _, err := q.Enqueue(text, "", ""); err != nil {
			t.Fatalf("Enqueue(%q): %v", text, err)
		}
	}

	waitFor(t, backend.done)

	calls := backend.recorded()
	if len(calls) != len(texts) {
		t.Fatalf("spoke %d items, want %d", len(calls), len(texts))
	}
	for i, want := range texts {
		if calls[i].text != want {
			t.Errorf("call %d text = %q, want %q", i, calls[i].text, want)
		}
	}
	for i := 1; i < len(calls); i++ {
		if calls[i].started.Before(calls[i-1].ended) {
			t.Errorf("call %d started before call %d completed", i, i-1)
		}
	}
}

func TestQueueDropsFailedItemAndContinues(t *testing.T) {
	backend := newScriptedBackend(2, 0)
	backend.failOn = "bad"
	q := NewQueue(backend, "scripted", 16, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	if _, err := q.Enqueue("bad", "", ""); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Enqueue("good", "", ""); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, backend.done)

	calls := backend.recorded()
	if len(calls) != 2 {
		t.Fatalf("spoke %d items, want 2", len(calls))
	}
	if calls[1].text != "good" {
		t.Errorf("item after failure = %q, want %q", calls[1].text, "good")
	}
}

func TestQueueSurvivesBackendPanic(t *testing.T) {
	backend := newScriptedBackend(2, 0)
	backend.panicOn = "boom"
	q := NewQueue(backend, "scripted", 16, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	if _, err := q.Enqueue("boom", "", ""); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Enqueue("after", "", ""); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, backend.done)

	calls := backend.recorded()
	if calls[len(calls)-1].text != "after" {
		t.Errorf("worker did not continue past a panicking item")
	}
}

func TestEnqueueFullQueue(t *testing.T) {
	backend := newScriptedBackend(1, 0)
	q := NewQueue(backend, "scripted", 1, nil)

	// No worker is draining, so the second enqueue must be refused.
	if _, err := q.Enqueue("first", "", ""); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := q.Enqueue("second", "", ""); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue on full queue error = %v, want ErrQueueFull", err)
	}

	if got := q.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want 1", got)
	}
}

func TestQueueEmitsLifecycleEvents(t *testing.T) {
	pub := events.NewPublisher(nil, "voicenotify", "events")
	stream := pub.Subscribe("test", 8)
	defer pub.Unsubscribe("test")

	backend := newScriptedBackend(1, 0)
	q := NewQueue(backend, "scripted", 4, pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	id, err := q.Enqueue("hello", "en", "pai")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, backend.done)

	wantTypes := []events.EventType{events.SpeechStarted, events.SpeechCompleted}
	for _, want := range wantTypes {
		select {
		case env := <-stream:
			if env.Type != want {
				t.Errorf("event type = %q, want %q", env.Type, want)
			}
			if env.NotificationID != id {
				t.Errorf("notification_id = %q, want %q", env.NotificationID, id)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing %q event", want)
		}
	}
}
