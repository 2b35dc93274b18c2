package registry

import (
	"strings"
	"testing"

	"github.com/voicenotify/voicenotify/internal/speech/engine"
)

func TestRegistryCreateUnknown(t *testing.T) {
	r := New()

	_, err := r.Create("missing", nil)
	if err == nil {
		t.Fatal("Create() with unknown name returned nil error")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("error %q does not name the unknown backend", err)
	}
}

func TestRegistryCreatePassesConfig(t *testing.T) {
	r := New()

	var gotConfig map[string]string
	r.Register("echo", func(config map[string]string) (engine.Backend, error) {
		gotConfig = config
		return &fakeBackend{available: true}, nil
	})

	if _, err := r.Create("echo", map[string]string{"value": "hello"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if gotConfig["value"] != "hello" {
		t.Errorf("factory config value = %q, want %q", gotConfig["value"], "hello")
	}
}

func TestRegistryReplacesFactory(t *testing.T) {
	r := New()

	first := &fakeBackend{}
	second := &fakeBackend{}
	r.Register("dup", func(map[string]string) (engine.Backend, error) { return first, nil })
	r.Register("dup", func(map[string]string) (engine.Backend, error) { return second, nil })

	b, err := r.Create("dup", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if b != second {
		t.Error("Create() returned the replaced factory's backend")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.Register(name, func(map[string]string) (engine.Backend, error) {
			return &fakeBackend{}, nil
		})
	}

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("Names() returned %d names, want %d", len(names), len(want))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], name)
		}
	}

	if !r.Has("alpha") {
		t.Error("Has(alpha) = false, want true")
	}
	if r.Has("omega") {
		t.Error("Has(omega) = true, want false")
	}
}
