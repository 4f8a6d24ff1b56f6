package registry

import (
	"iter"
	"sync/atomic"

	"falcon-mcp/internal/api"
)

// ToolDescriptor describes one tool: its name, parameter schema, handler and
// human-readable metadata. Descriptors are immutable once registered.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  []Parameter
	Handler     api.Operation
}

// Parameter returns the declared parameter with the given name.
func (d ToolDescriptor) Parameter(name string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Registry maps tool names to descriptors, preserving registration order.
type Registry struct {
	order  []ToolDescriptor
	byName map[string]int
	sealed atomic.Bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds a descriptor. It fails with DuplicateToolError when the name
// is taken and with InternalError when the descriptor is malformed or the
// registry is sealed.
func (r *Registry) Register(desc ToolDescriptor) error {
	if r.sealed.Load() {
		return api.NewInternalError("registry is sealed, cannot register %q", desc.Name)
	}
	if desc.Name == "" {
		return api.NewInternalError("tool name must not be empty")
	}
	if _, exists := r.byName[desc.Name]; exists {
		return api.NewDuplicateToolError(desc.Name)
	}
	if err := checkParameters(desc); err != nil {
		return err
	}

	desc.Parameters = cloneParameters(desc.Parameters)
	r.byName[desc.Name] = len(r.order)
	r.order = append(r.order, desc)
	return nil
}

// MustRegister is Register for static catalogs; it panics on error.
func (r *Registry) MustRegister(descs ...ToolDescriptor) {
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Lookup returns the descriptor registered under name or UnknownToolError.
func (r *Registry) Lookup(name string) (ToolDescriptor, error) {
	idx, ok := r.byName[name]
	if !ok {
		return ToolDescriptor{}, api.NewUnknownToolError(name)
	}
	return r.order[idx], nil
}

// List yields descriptors in registration order. The sequence is lazy and
// may be iterated any number of times.
func (r *Registry) List() iter.Seq[ToolDescriptor] {
	return func(yield func(ToolDescriptor) bool) {
		for _, d := range r.order {
			if !yield(d) {
				return
			}
		}
	}
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for d := range r.List() {
		names = append(names, d.Name)
	}
	return names
}

func checkParameters(desc ToolDescriptor) error {
	seen := make(map[string]bool, len(desc.Parameters))
	for _, p := range desc.Parameters {
		if p.Name == "" {
			return api.NewInternalError("tool %q declares a parameter without a name", desc.Name)
		}
		if seen[p.Name] {
			return api.NewInternalError("tool %q declares parameter %q twice", desc.Name, p.Name)
		}
		if !p.Type.valid() {
			return api.NewInternalError("tool %q parameter %q has unsupported type %q", desc.Name, p.Name, p.Type)
		}
		seen[p.Name] = true
	}
	return nil
}

func cloneParameters(params []Parameter) []Parameter {
	out := make([]Parameter, len(params))
	for i, p := range params {
		p.Enum = append([]string(nil), p.Enum...)
		p.ItemEnum = append([]string(nil), p.ItemEnum...)
		out[i] = p
	}
	return out
}
