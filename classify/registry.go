package classify

import (
	"strings"
	"sync"
)

// DefaultRuleSetName is the registry name of the built-in rule table.
const DefaultRuleSetName = "default"

// Registry is a thread-safe name → RuleSet map, letting callers install
// provider-specific rule tables and select them per call.
type Registry struct {
	mu sync.RWMutex
	m  map[string]*RuleSet
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]*RuleSet)}
}

// RegisterBuiltins registers the default rule table into reg.
func RegisterBuiltins(reg *Registry) {
	if reg == nil {
		return
	}
	reg.Register(DefaultRuleSetName, DefaultRules())
}

// Register associates name with rs. Empty names and nil rule sets are ignored.
func (r *Registry) Register(name string, rs *RuleSet) {
	if r == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" || rs == nil {
		return
	}

	r.mu.Lock()
	if r.m == nil {
		r.m = make(map[string]*RuleSet)
	}
	r.m[name] = rs
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (*RuleSet, bool) {
	if r == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	r.mu.RLock()
	rs, ok := r.m[name]
	r.mu.RUnlock()
	return rs, ok && rs != nil
}

// Resolve returns the rule set for name, falling back to the built-in table
// when the name is empty or not registered.
func (r *Registry) Resolve(name string) *RuleSet {
	if rs, ok := r.Get(name); ok {
		return rs
	}
	if rs, ok := r.Get(DefaultRuleSetName); ok {
		return rs
	}
	return DefaultRules()
}
