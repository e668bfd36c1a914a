// Package storage defines the data-directory document store.
package storage

// Provider is the interface for whole-document JSON storage.
// Names are relative to the data directory.
type Provider interface {
	// Read returns the raw bytes of the document at name.
	Read(name string) ([]byte, error)
	// Write atomically replaces the document at name.
	Write(name string, content []byte) error
	// Update runs a read-modify-write cycle under the store lock. current is
	// nil when the document does not exist yet.
	Update(name string, fn func(current []byte) ([]byte, error)) error
	// Exists reports whether the document is present.
	Exists(name string) bool
}
