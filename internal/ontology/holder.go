package ontology

import "sync/atomic"

// Source yields the current ontology. Current may return nil when no
// ontology could be loaded.
type Source interface {
	Current() *Ontology
}

// Holder is a Source whose ontology can be swapped at runtime.
type Holder struct {
	p atomic.Pointer[Ontology]
}

// NewHolder returns a Holder seeded with o (which may be nil).
func NewHolder(o *Ontology) *Holder {
	h := &Holder{}
	h.p.Store(o)
	return h
}

// Current returns the active ontology.
func (h *Holder) Current() *Ontology {
	if h == nil {
		return nil
	}
	return h.p.Load()
}

// Set replaces the active ontology.
func (h *Holder) Set(o *Ontology) {
	h.p.Store(o)
}
