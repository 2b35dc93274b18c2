package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/voicenotify/voicenotify/internal/speech/engine"
)

// ErrNoBackend indicates that no backend in the preference order was usable.
var ErrNoBackend = errors.New("no speech backend available")

// LoadBackend walks the preference order and returns the first backend that
// constructs successfully and reports itself available, along with its name.
// Unknown names and failed constructions are logged and skipped. Once a
// backend is selected, later candidates are never probed.
func LoadBackend(ctx context.Context, prefs []string, config map[string]string) (engine.Backend, string, error) {
	for _, name := range prefs {
		if !Backends.Has(name) {
			slog.WarnContext(ctx, "skipping unknown speech backend", slog.String("backend", name))
			continue
		}

		backend, ok := tryBackend(ctx, name, config)
		if !ok {
			continue
		}

		slog.InfoContext(ctx, "selected speech backend", slog.String("backend", name))
		return backend, name, nil
	}

	return nil, "", ErrNoBackend
}

// tryBackend constructs and probes one backend. A panicking factory or probe
// is treated the same as an unavailable backend.
func tryBackend(ctx context.Context, name string, config map[string]string) (backend engine.Backend, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.WarnContext(ctx, "speech backend panicked during probe",
				slog.String("backend", name), slog.String("panic", fmt.Sprint(r)))
			backend, ok = nil, false
		}
	}()

	b, err := Backends.Create(name, config)
	if err != nil {
		slog.WarnContext(ctx, "speech backend construction failed",
			slog.String("backend", name), slog.String("error", err.Error()))
		return nil, false
	}

	if !b.IsAvailable() {
		slog.WarnContext(ctx, "speech backend not available", slog.String("backend", name))
		_ = b.Close()
		return nil, false
	}

	return b, true
}

// CheckAvailability constructs every registered backend transiently and
// reports which ones are currently usable. Instances are closed before
// returning; this is for diagnostics only and never affects the backend
// selected at startup.
func CheckAvailability(config map[string]string) map[string]bool {
	status := make(map[string]bool, len(Backends.Names()))
	for _, name := range Backends.Names() {
		status[name] = probe(name, config)
	}
	return status
}

func probe(name string, config map[string]string) (available bool) {
	defer func() {
		if recover() != nil {
			available = false
		}
	}()

	b, err := Backends.Create(name, config)
	if err != nil {
		return false
	}
	defer b.Close()

	return b.IsAvailable()
}
