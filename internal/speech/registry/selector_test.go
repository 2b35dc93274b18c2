package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/voicenotify/voicenotify/internal/speech/engine"
)

// fakeBackend is a minimal Backend for selector tests. probes counts
// IsAvailable calls so tests can prove a candidate was never touched.
type fakeBackend struct {
	available bool
	probes    *int
	closed    bool
}

func (f *fakeBackend) IsAvailable() bool {
	if f.probes != nil {
		*f.probes++
	}
	return f.available
}

func (f *fakeBackend) Speak(_ context.Context, _ string, _ string) error { return nil }

func (f *fakeBackend) Voices() []engine.Voice { return nil }

func (f *fakeBackend) HealthInfo() map[string]string { return map[string]string{} }

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func TestLoadBackendPicksFirstAvailable(t *testing.T) {
	var aProbes, cProbes int
	cConstructed := false

	Backends.Register("sel-a", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: false, probes: &aProbes}, nil
	})
	Backends.Register("sel-b", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: true}, nil
	})
	Backends.Register("sel-c", func(map[string]string) (engine.Backend, error) {
		cConstructed = true
		return &fakeBackend{available: true, probes: &cProbes}, nil
	})

	backend, name, err := LoadBackend(context.Background(), []string{"sel-a", "sel-b", "sel-c"}, nil)
	if err != nil {
		t.Fatalf("LoadBackend() error = %v", err)
	}
	if backend == nil {
		t.Fatal("LoadBackend() returned nil backend")
	}
	if name != "sel-b" {
		t.Errorf("selected backend = %q, want %q", name, "sel-b")
	}
	if aProbes != 1 {
		t.Errorf("first candidate probed %d times, want 1", aProbes)
	}
	if cConstructed || cProbes != 0 {
		t.Error("candidate after the selected one was constructed or probed")
	}
}

func TestLoadBackendNoneAvailable(t *testing.T) {
	Backends.Register("none-a", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: false}, nil
	})

	_, _, err := LoadBackend(context.Background(), []string{"none-a"}, nil)
	if !errors.Is(err, ErrNoBackend) {
		t.Fatalf("LoadBackend() error = %v, want ErrNoBackend", err)
	}
}

func TestLoadBackendSkipsUnknownNames(t *testing.T) {
	Backends.Register("known-b", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: true}, nil
	})

	_, name, err := LoadBackend(context.Background(), []string{"no-such-backend", "known-b"}, nil)
	if err != nil {
		t.Fatalf("LoadBackend() error = %v", err)
	}
	if name != "known-b" {
		t.Errorf("selected backend = %q, want %q", name, "known-b")
	}
}

func TestLoadBackendTreatsFactoryErrorAsUnavailable(t *testing.T) {
	Backends.Register("err-a", func(map[string]string) (engine.Backend, error) {
		return nil, errors.New("missing api key")
	})
	Backends.Register("err-b", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: true}, nil
	})

	_, name, err := LoadBackend(context.Background(), []string{"err-a", "err-b"}, nil)
	if err != nil {
		t.Fatalf("LoadBackend() error = %v", err)
	}
	if name != "err-b" {
		t.Errorf("selected backend = %q, want %q", name, "err-b")
	}
}

func TestLoadBackendRecoversFromPanickingFactory(t *testing.T) {
	Backends.Register("panic-a", func(map[string]string) (engine.Backend, error) {
		panic("factory exploded")
	})
	Backends.Register("panic-b", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: true}, nil
	})

	_, name, err := LoadBackend(context.Background(), []string{"panic-a", "panic-b"}, nil)
	if err != nil {
		t.Fatalf("LoadBackend() error = %v", err)
	}
	if name != "panic-b" {
		t.Errorf("selected backend = %q, want %q", name, "panic-b")
	}
}

func TestLoadBackendClosesUnavailableCandidates(t *testing.T) {
	unavailable := &fakeBackend{available: false}

	Backends.Register("close-a", func(map[string]string) (engine.Backend, error) {
		return unavailable, nil
	})
	Backends.Register("close-b", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: true}, nil
	})

	_, _, err := LoadBackend(context.Background(), []string{"close-a", "close-b"}, nil)
	if err != nil {
		t.Fatalf("LoadBackend() error = %v", err)
	}
	if !unavailable.closed {
		t.Error("unavailable candidate was not closed")
	}
}

func TestCheckAvailability(t *testing.T) {
	Backends.Register("check-up", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: true}, nil
	})
	Backends.Register("check-down", func(map[string]string) (engine.Backend, error) {
		return &fakeBackend{available: false}, nil
	})
	Backends.Register("check-err", func(map[string]string) (engine.Backend, error) {
		return nil, errors.New("not configured")
	})

	status := CheckAvailability(nil)

	if !status["check-up"] {
		t.Error("check-up reported unavailable, want available")
	}
	if status["check-down"] {
		t.Error("check-down reported available, want unavailable")
	}
	if status["check-err"] {
		t.Error("check-err reported available, want unavailable")
	}
}
