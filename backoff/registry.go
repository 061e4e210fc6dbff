package backoff

import (
	"strings"
	"sync"
)

// Factory builds a Strategy from a Config.
type Factory func(cfg Config) Strategy

// Registry is a thread-safe name → Factory map.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Factory)}
}

// Register associates name with f. Empty names and nil factories are ignored.
func (r *Registry) Register(name string, f Factory) {
	if r == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" || f == nil {
		return
	}

	r.mu.Lock()
	if r.m == nil {
		r.m = make(map[string]Factory)
	}
	r.m[name] = f
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Factory, bool) {
	if r == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	r.mu.RLock()
	f, ok := r.m[name]
	r.mu.RUnlock()
	return f, ok && f != nil
}

// Build resolves name and constructs a strategy from cfg. Unknown names fall
// back to Exponential.
func (r *Registry) Build(name string, cfg Config) Strategy {
	if f, ok := r.Get(name); ok {
		return f(cfg)
	}
	return Exponential{Config: cfg}
}
