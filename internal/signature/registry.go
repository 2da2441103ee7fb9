package signature

import (
	"proto-matcher/internal/common"
)

// Registry maps qualified type names of one descriptor set to their signatures.
// Several names may share a signature.
type Registry struct {
	sigs  map[string]*Signature
	names []string
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sigs: make(map[string]*Signature),
	}
}

// Add registers sig under name. A name is only ever registered once; later calls are ignored.
func (r *Registry) Add(name string, sig *Signature) {
	if _, ok := r.sigs[name]; ok {
		return
	}

	r.sigs[name] = sig
	r.names = append(r.names, name)
}

// Lookup returns the signature registered under name.
func (r *Registry) Lookup(name string) (*Signature, bool) {
	sig, ok := r.sigs[name]
	return sig, ok
}

// Has returns true if name has a signature.
func (r *Registry) Has(name string) bool {
	_, ok := r.sigs[name]
	return ok
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns every registered name in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// TopLevelNames returns registered names that are not nested in another type.
func (r *Registry) TopLevelNames() []string {
	var out []string
	for _, name := range r.names {
		if !common.IsNested(name) {
			out = append(out, name)
		}
	}

	return out
}

// reorder puts names listed in order first, in that order, followed by the rest.
func (r *Registry) reorder(order []string) {
	names := make([]string, 0, len(r.names))
	placed := make(map[string]bool, len(r.names))

	for _, name := range order {
		if _, ok := r.sigs[name]; ok && !placed[name] {
			names = append(names, name)
			placed[name] = true
		}
	}

	for _, name := range r.names {
		if !placed[name] {
			names = append(names, name)
		}
	}

	r.names = names
}
