package personas

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader loads and optionally hot-reloads persona definitions from YAML files.
type Loader struct {
	dir string

	mu       sync.RWMutex
	personas map[string]*Persona
}

// NewLoader creates a persona loader for the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:      dir,
		personas: make(map[string]*Persona),
	}
}

// LoadAll loads all .yaml and .yml files from the configured directory.
func (l *Loader) LoadAll() (map[string]*Persona, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read persona dir %q: %w", l.dir, err)
	}

	result := make(map[string]*Persona)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		p, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", path, err)
		}
		result[p.Name] = p
	}

	l.mu.Lock()
	l.personas = result
	l.mu.Unlock()

	return result, nil
}

// Get returns a loaded persona by name.
func (l *Loader) Get(name string) (*Persona, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.personas[name]
	return p, ok
}

// All returns all loaded personas.
func (l *Loader) All() map[string]*Persona {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]*Persona, len(l.personas))
	for k, v := range l.personas {
		result[k] = v
	}
	return result
}

func (l *Loader) loadFile(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if p.Template != "" {
		if _, err := template.New("").Parse(p.Template); err != nil {
			return nil, fmt.Errorf("parse template: %w", err)
		}
	}

	return &p, nil
}

// WatchAndReload starts watching the persona directory for changes and
// reloads. This blocks until the done channel is closed.
func (l *Loader) WatchAndReload(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", l.dir, err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				ext := filepath.Ext(event.Name)
				if ext == ".yaml" || ext == ".yml" {
					if _, err := l.LoadAll(); err != nil {
						// Keep serving the previous catalog on a bad edit.
						slog.Warn("persona reload failed",
							slog.String("file", event.Name),
							slog.String("error", err.Error()))
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
