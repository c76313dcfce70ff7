// Package adapters holds pluggable per-source adapters that convert a
// recognized upstream payload shape into the generic element list the
// builder consumes.
package adapters

// Adapter converts one recognized extractor output shape into elements.
type Adapter interface {
	// Name identifies the adapter in provenance and logs.
	Name() string

	// CanHandle reports whether this adapter recognizes the parsed payload.
	CanHandle(v any) bool

	// Elements converts the payload into the generic element list.
	Elements(v any) ([]map[string]any, error)
}

// Registry manages source adapters. Adapters are consulted in registration
// order; the first one that recognizes the payload wins.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the built-in adapters registered.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(NewBlocksAdapter())
	return r
}

// Register appends an adapter to the chain.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Find returns the first adapter that recognizes the payload, or nil.
func (r *Registry) Find(v any) Adapter {
	for _, a := range r.adapters {
		if a.CanHandle(v) {
			return a
		}
	}
	return nil
}
