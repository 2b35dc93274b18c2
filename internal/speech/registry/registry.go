package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/voicenotify/voicenotify/internal/speech/engine"
)

// Factory constructs a speech backend from its config map.
type Factory func(config map[string]string) (engine.Backend, error)

// Registry maps backend names to factories. Backend packages register
// themselves from init, so importing a backend package is what makes it
// selectable.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Backends is the process-wide registry the backend packages register into.
var Backends = New()

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named backend factory, replacing any previous one.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates the named backend with the given config.
func (r *Registry) Create(name string, config map[string]string) (engine.Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	return factory(config)
}

// Has reports whether a backend name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered backend names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
