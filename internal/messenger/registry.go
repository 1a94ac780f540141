package messenger

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maps target names to presets.
// It is not safe for concurrent use; registration should happen at startup.
type Registry struct {
	targets map[string]Target
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Target)}
}

// Register adds a target under t.Name. Overwrites if the name already exists.
// Panics if the name, scheme, or opener is empty (programmer error).
func (r *Registry) Register(t Target) {
	if t.Name == "" {
		panic("messenger: Register called with empty name")
	}
	if t.Scheme == "" || t.Opener == "" {
		panic("messenger: Register called with incomplete target " + t.Name)
	}
	r.targets[t.Name] = t
}

// Target looks up a target by name.
func (r *Registry) Target(name string) (Target, error) {
	t, ok := r.targets[name]
	if !ok {
		return Target{}, &UnknownTargetError{Name: name, Available: r.AvailableTargets()}
	}
	return t, nil
}

// AvailableTargets returns registered target names in sorted order.
func (r *Registry) AvailableTargets() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins registers the built-in target presets on the given registry.
func RegisterBuiltins(reg *Registry) {
	reg.Register(WhatsAppPreset())
	reg.Register(SMSPreset())
	reg.Register(SMSToPreset())
}

// UnknownTargetError indicates a target name is not registered.
type UnknownTargetError struct {
	Name      string
	Available []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown messenger %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
