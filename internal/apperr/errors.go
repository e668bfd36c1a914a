// Package apperr holds sentinel errors shared by the service layers.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrOntologyNotLoaded = errors.New("ontology not loaded")
)
