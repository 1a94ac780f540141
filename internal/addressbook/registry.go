package addressbook

import (
	"fmt"
	"sort"
	"strings"
)

// Factory creates a Source reading from path.
type Factory func(path string) (Source, error)

// Registry maps source kinds to factory functions.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a named source factory. Overwrites if kind already exists.
// Panics if kind is empty or f is nil (programmer error).
func (r *Registry) Register(kind string, f Factory) {
	if kind == "" {
		panic("addressbook: Register called with empty kind")
	}
	if f == nil {
		panic("addressbook: Register called with nil factory")
	}
	r.factories[kind] = f
}

// NewSource instantiates a source by kind.
func (r *Registry) NewSource(kind, path string) (Source, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, &UnknownSourceError{
			Kind:      kind,
			Available: r.AvailableKinds(),
		}
	}
	s, err := f(path)
	if err != nil {
		return nil, fmt.Errorf("addressbook: source factory %q: %w", kind, err)
	}
	return s, nil
}

// AvailableKinds returns registered source kinds in sorted order.
func (r *Registry) AvailableKinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// RegisterBuiltins registers the sqlite and yaml sources.
func RegisterBuiltins(reg *Registry) {
	reg.Register("sqlite", func(path string) (Source, error) {
		return NewSQLiteSource(path), nil
	})
	reg.Register("yaml", func(path string) (Source, error) {
		return NewYAMLSource(path), nil
	})
}

// UnknownSourceError indicates a source kind is not registered.
type UnknownSourceError struct {
	Kind      string
	Available []string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown contact source %q (available: %s)", e.Kind, strings.Join(e.Available, ", "))
}
