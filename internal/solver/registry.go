package solver

import (
	"fmt"
	"slices"
)

// Ansatz is a symmetry class with its candidate templates in the order
// they are tried.
type Ansatz struct {
	Tag        string
	Candidates []func() *Template
}

type Registry struct {
	ansatze map[string]*Ansatz
}

// NewRegistry registers the built-in catalogue.
func NewRegistry() *Registry {
	r := &Registry{ansatze: make(map[string]*Ansatz)}
	r.Register(&Ansatz{Tag: "spherical", Candidates: []func() *Template{Schwarzschild, ReissnerNordstrom}})
	r.Register(&Ansatz{Tag: "axisymmetric", Candidates: []func() *Template{Kerr}})
	r.Register(&Ansatz{Tag: "cosmological", Candidates: []func() *Template{DeSitter, FLRWFlat}})
	return r
}

func (r *Registry) Register(a *Ansatz) {
	r.ansatze[a.Tag] = a
}

func (r *Registry) Get(tag string) (*Ansatz, error) {
	a, ok := r.ansatze[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSymmetry, tag)
	}
	return a, nil
}

func (r *Registry) List() []string {
	tags := make([]string, 0, len(r.ansatze))
	for t := range r.ansatze {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

// Templates instantiates the candidate list of an ansatz.
func (a *Ansatz) Templates() []*Template {
	out := make([]*Template, len(a.Candidates))
	for i, fn := range a.Candidates {
		out[i] = fn()
	}
	return out
}
