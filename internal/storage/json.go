package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
)

// ReadJSON decodes the document at name into v. A missing or malformed
// document leaves v untouched and reports ok=false; the caller keeps its
// default value.
func ReadJSON(p Provider, name string, v any) (ok bool) {
	data, err := p.Read(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("storage: read document failed", slog.String("name", name), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("storage: decode document failed", slog.String("name", name), slog.String("error", err.Error()))
		return false
	}
	return true
}

// WriteJSON encodes v with two-space indentation and atomically stores it.
func WriteJSON(p Provider, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", name, err)
	}
	return p.Write(name, data)
}

// UpdateJSON decodes the document into a fresh T, applies fn and stores the
// result under the provider lock. A missing document starts from the zero
// value of T. A document that does not decode is left untouched and the
// decode error is returned.
func UpdateJSON[T any](p Provider, name string, fn func(doc *T) error) error {
	return p.Update(name, func(current []byte) ([]byte, error) {
		var doc T
		if current != nil {
			if err := json.Unmarshal(current, &doc); err != nil {
				slog.Error("storage: decode document failed, refusing to overwrite",
					slog.String("name", name), slog.String("error", err.Error()))
				return nil, fmt.Errorf("storage: decode %s: %w", name, err)
			}
		}
		if err := fn(&doc); err != nil {
			return nil, err
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("storage: encode %s: %w", name, err)
		}
		return out, nil
	})
}
