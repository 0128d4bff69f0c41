package explore

import (
	"context"
	"sort"
	"sync"
)

// ToolFunc executes one action kind. Tools are opaque to the executor: they
// receive validated parameters and return a raw result or an error.
type ToolFunc func(ctx context.Context, params map[string]any) (any, error)

// Registry maps action kinds to tool functions. It is a strategy table
// populated at construction time.
type Registry struct {
	tools map[ActionKind]ToolFunc
	mu    sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[ActionKind]ToolFunc)}
}

// Register adds or replaces the tool for a kind.
func (r *Registry) Register(kind ActionKind, fn ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[kind] = fn
}

// Unregister removes the tool for a kind.
func (r *Registry) Unregister(kind ActionKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, kind)
}

// Get returns the tool for a kind, or nil if none is registered.
func (r *Registry) Get(kind ActionKind) ToolFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[kind]
}

// Kinds returns the registered action kinds in stable order.
func (r *Registry) Kinds() []ActionKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]ActionKind, 0, len(r.tools))
	for kind := range r.tools {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// GetStringParam extracts a string parameter.
func GetStringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetIntParam extracts an integer parameter, accepting float64 for values
// that arrived through JSON decoding.
func GetIntParam(params map[string]any, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetBoolParam extracts a boolean parameter.
func GetBoolParam(params map[string]any, key string) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
