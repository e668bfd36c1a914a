// Package testutil provides shared test helpers for setting up data
// directories, activity logs and ontologies.
package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/starford/geotutor/internal/activity"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/storage"
)

// TestActivity creates a temporary SQLite activity log that is automatically
// closed.
func TestActivity(t *testing.T) *activity.Log {
	t.Helper()
	log, err := activity.Open(filepath.Join(t.TempDir(), "activity.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

// TestStore creates an empty temporary data directory with a storage.Provider.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// SeededStore is TestStore with users.json and progress.json seeded.
func SeededStore(t *testing.T) *storage.FS {
	t.Helper()
	root := t.TempDir()
	store, err := storage.Bootstrap(filepath.Join(root, "data"), filepath.Join(root, "frontend"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// FixtureOntology loads the ontology fixture shared with the ontology
// package tests.
func FixtureOntology(t *testing.T) *ontology.Ontology {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "ontology", "testdata", "its.owl")
	o, err := ontology.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return o
}
