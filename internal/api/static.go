package api

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const indexFile = "index.html"

// StaticHandler serves the frontend directory.
type StaticHandler struct {
	root string
}

// NewStaticHandler creates a handler rooted at the frontend directory.
func NewStaticHandler(root string) *StaticHandler {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &StaticHandler{root: abs}
}

// safePath resolves a URL path to a file under the frontend root,
// rejecting traversal.
func (h *StaticHandler) safePath(name string) (string, error) {
	if strings.Contains(name, "\x00") {
		return "", fmt.Errorf("invalid path: %q", name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid path: %s", name)
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+name), "/")
	if cleaned == "" {
		cleaned = indexFile
	}
	abs := filepath.Join(h.root, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(abs, h.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes frontend directory")
	}
	return abs, nil
}

// ServeHTTP handles GET / and GET /{path}.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if name == "" {
		name = strings.TrimPrefix(r.URL.Path, "/")
	}
	abs, err := h.safePath(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, err := os.Open(abs)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
