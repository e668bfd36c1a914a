package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
	"testing"

	"github.com/starford/geotutor/internal/models"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	content := []byte(`{"a":1}`)
	if err := s.Write("doc.json", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("doc.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	if !s.Exists("doc.json") {
		t.Error("Exists = false after write")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempStore(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.json",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("atomic.json", []byte("original"))
	if err := s.Write("atomic.json", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.json")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".geotutor-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestUpdateMissingDocumentStartsNil(t *testing.T) {
	s := tempStore(t)
	seen := []byte("sentinel")
	err := s.Update("new.json", func(current []byte) ([]byte, error) {
		seen = current
		return []byte("[]"), nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if seen != nil {
		t.Errorf("current = %q, want nil", seen)
	}
}

func TestUpdateErrorLeavesDocument(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("keep.json", []byte("v1"))
	boom := errors.New("boom")
	err := s.Update("keep.json", func([]byte) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	got, _ := s.Read("keep.json")
	if string(got) != "v1" {
		t.Errorf("content = %q, want v1", got)
	}
}

func TestUpdateJSONConcurrentIncrements(t *testing.T) {
	s := tempStore(t)
	type counter struct {
		N int `json:"n"`
	}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := UpdateJSON(s, "counter.json", func(c *counter) error {
				c.N++
				return nil
			}); err != nil {
				t.Errorf("UpdateJSON: %v", err)
			}
		}()
	}
	wg.Wait()

	var got counter
	if !ReadJSON(s, "counter.json", &got) {
		t.Fatal("ReadJSON failed")
	}
	if got.N != 25 {
		t.Errorf("n = %d, want 25 (lost updates)", got.N)
	}
}

func TestUpdateJSONMalformedLeavesDocument(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("bad.json", []byte("{not json"))
	called := false
	err := UpdateJSON(s, "bad.json", func(m *map[string]int) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if called {
		t.Error("fn must not run on an undecodable document")
	}
	data, _ := s.Read("bad.json")
	if string(data) != "{not json" {
		t.Errorf("document overwritten: %q", data)
	}
}

// legacyUsers is users.json as written with zone-less ISO timestamps.
const legacyUsers = `{
  "students": [
    {"id": "student_001", "username": "john_math", "name": "John", "email": "john@example.com",
     "registration_date": "2024-01-10T14:30:00", "type": "student"},
    {"id": "student_002", "username": "sarah_geo", "name": "Sarah", "email": "sarah@example.com",
     "registration_date": "2024-01-12T09:15:00", "type": "student"}
  ],
  "guests": [
    {"id": "guest_1a2b3c4d", "name": "Guest", "type": "guest", "created_at": "2024-01-15T08:00:00.123456"}
  ],
  "sessions": [
    {"session_id": "session_9f8e7d6c", "user_id": "guest_1a2b3c4d", "user_type": "guest",
     "start_time": "2024-01-15T08:00:00.123456", "is_active": true}
  ]
}`

func TestUpdateJSONZonelessTimestamps(t *testing.T) {
	s := tempStore(t)
	if err := s.Write(UsersDocument, []byte(legacyUsers)); err != nil {
		t.Fatal(err)
	}
	err := UpdateJSON(s, UsersDocument, func(dir *models.UserDirectory) error {
		dir.Guests = append(dir.Guests, models.User{ID: "guest_new", Name: "Guest", Type: models.UserTypeGuest})
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateJSON: %v", err)
	}

	var dir models.UserDirectory
	if !ReadJSON(s, UsersDocument, &dir) {
		t.Fatal("users.json unreadable after update")
	}
	if len(dir.Students) != 2 || dir.Students[0].ID != "student_001" || len(dir.Guests) != 2 || len(dir.Sessions) != 1 {
		t.Fatalf("directory lost records: %+v", dir)
	}
	want := time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC)
	if got := dir.Students[0].RegistrationDate; got == nil || !got.Equal(want) {
		t.Errorf("registration_date = %v, want %v", got, want)
	}
	if got := dir.Sessions[0].StartTime; got.Nanosecond() != 123456000 {
		t.Errorf("start_time = %v", got)
	}
}

func TestBootstrapSeedsOnce(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	frontendDir := filepath.Join(root, "frontend")

	store, err := Bootstrap(dataDir, frontendDir)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if _, err := os.Stat(filepath.Join(frontendDir, "images")); err != nil {
		t.Errorf("images dir missing: %v", err)
	}

	var dir models.UserDirectory
	if !ReadJSON(store, UsersDocument, &dir) {
		t.Fatal("users.json not seeded")
	}
	if len(dir.Students) != 2 || dir.Students[0].Username != "john_math" {
		t.Errorf("students = %+v", dir.Students)
	}

	var book models.ProgressBook
	if !ReadJSON(store, ProgressDocument, &book) {
		t.Fatal("progress.json not seeded")
	}
	if book["john_math"] == nil || book["john_math"].Quiz.AverageScore != 85 {
		t.Errorf("progress seed = %+v", book)
	}

	// A second bootstrap must not overwrite existing documents.
	_ = store.Write(UsersDocument, []byte(`{"students":[],"guests":[],"sessions":[]}`))
	store, err = Bootstrap(dataDir, frontendDir)
	if err != nil {
		t.Fatalf("Bootstrap again: %v", err)
	}
	dir = models.UserDirectory{}
	ReadJSON(store, UsersDocument, &dir)
	if len(dir.Students) != 0 {
		t.Errorf("users.json overwritten: %+v", dir.Students)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/geotutor-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "geotutor-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
