package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/starford/geotutor/internal/apperr"
	"github.com/starford/geotutor/internal/models"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/storage"
	"github.com/starford/geotutor/internal/testutil"
)

var (
	guestID   = regexp.MustCompile(`^guest_[0-9a-f]{8}$`)
	studentID = regexp.MustCompile(`^student_[0-9a-f]{8}$`)
	sessionID = regexp.MustCompile(`^session_[0-9a-f]{8}$`)
)

func newSeeded(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.SeededStore(t))
}

func TestCreateGuest_FreshIDs(t *testing.T) {
	svc := newSeeded(t)
	ctx := context.Background()

	a, err := svc.CreateGuest(ctx)
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	b, err := svc.CreateGuest(ctx)
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if a.UserID == b.UserID {
		t.Errorf("guest ids should differ: %s", a.UserID)
	}
	if !guestID.MatchString(a.UserID) || !sessionID.MatchString(a.SessionID) {
		t.Errorf("unexpected ids: %+v", a)
	}
	if a.Name != "Guest" || a.Type != models.UserTypeGuest {
		t.Errorf("guest = %+v", a)
	}

	dir := svc.Directory(ctx)
	if len(dir.Guests) != 2 || len(dir.Sessions) != 2 {
		t.Errorf("guests=%d sessions=%d, want 2/2", len(dir.Guests), len(dir.Sessions))
	}
	if dir.Guests[0].CreatedAt == nil {
		t.Error("guest created_at not stamped")
	}
}

func TestLogin_ExistingStudent(t *testing.T) {
	svc := newSeeded(t)
	ctx := context.Background()

	byUsername, err := svc.Login(ctx, "john_math")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if byUsername.UserID != "student_001" || byUsername.Name != "John" {
		t.Errorf("login by username = %+v", byUsername)
	}

	byName, err := svc.Login(ctx, "sARAH")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if byName.UserID != "student_002" {
		t.Errorf("login by name = %+v", byName)
	}
}

func TestLogin_NewStudentIsStable(t *testing.T) {
	svc := newSeeded(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, "Ada Lovelace")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !studentID.MatchString(first.UserID) {
		t.Errorf("user id = %q", first.UserID)
	}
	if first.Username != "ada_lovelace" {
		t.Errorf("username = %q, want ada_lovelace", first.Username)
	}

	second, err := svc.Login(ctx, "Ada Lovelace")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if second.UserID != first.UserID {
		t.Errorf("repeated login returned %q, want %q", second.UserID, first.UserID)
	}
	if second.SessionID == first.SessionID {
		t.Error("each login should open a new session")
	}

	// The derived username also matches.
	third, err := svc.Login(ctx, "ada_lovelace")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if third.UserID != first.UserID {
		t.Errorf("login by derived username = %q", third.UserID)
	}

	if n := len(svc.Directory(ctx).Students); n != 3 {
		t.Errorf("students = %d, want 3", n)
	}
}

func TestLogin_EmptyUsername(t *testing.T) {
	svc := newSeeded(t)
	_, err := svc.Login(context.Background(), "   ")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLoginFromOntology(t *testing.T) {
	svc := newSeeded(t)
	ctx := context.Background()
	st := ontology.Student{
		Name:       "John - Registered Student",
		Properties: map[string]string{"hasAccount": "JohnAccount"},
		Details:    map[string]string{"account": "JohnAccount"},
	}
	res, err := svc.LoginFromOntology(ctx, st)
	if err != nil {
		t.Fatalf("LoginFromOntology: %v", err)
	}
	if res.UserID != "john_-_registered_student" || !res.FromOntology {
		t.Errorf("result = %+v", res)
	}
	if res.Details["account"] != "JohnAccount" {
		t.Errorf("details = %v", res.Details)
	}
	dir := svc.Directory(ctx)
	if len(dir.Students) != 2 {
		t.Errorf("ontology login must not register a student, got %d", len(dir.Students))
	}
	if len(dir.Sessions) != 1 || dir.Sessions[0].UserID != res.UserID {
		t.Errorf("sessions = %+v", dir.Sessions)
	}
}

func TestEndSession(t *testing.T) {
	svc := newSeeded(t)
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	res, err := svc.CreateGuest(ctx)
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	ended, err := svc.EndSession(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if ended.IsActive || ended.EndTime == nil || !ended.EndTime.Equal(fixed) {
		t.Errorf("ended = %+v", ended)
	}

	stored := svc.Directory(ctx).Sessions[0]
	if stored.IsActive {
		t.Error("stored session still active")
	}

	if _, err := svc.EndSession(ctx, "session_missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDirectory_MissingDocument(t *testing.T) {
	_, store := testutil.TestStore(t)
	svc := NewService(store)
	dir := svc.Directory(context.Background())
	if dir.Students == nil || dir.Guests == nil || dir.Sessions == nil {
		t.Errorf("directory slices should be non-nil: %+v", dir)
	}

	// First write creates the document.
	if _, err := svc.CreateGuest(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !store.Exists(storage.UsersDocument) {
		t.Error("users.json not created")
	}
}

func TestLogin_ZonelessTimestampsKeepDirectory(t *testing.T) {
	_, store := testutil.TestStore(t)
	doc := `{"students": [
		{"id": "student_001", "username": "john_math", "name": "John", "registration_date": "2024-01-10T14:30:00", "type": "student"},
		{"id": "student_002", "username": "sarah_geo", "name": "Sarah", "registration_date": "2024-01-12T09:15:00", "type": "student"}
	], "guests": [], "sessions": []}`
	if err := store.Write(storage.UsersDocument, []byte(doc)); err != nil {
		t.Fatal(err)
	}
	svc := NewService(store)

	res, err := svc.Login(context.Background(), "john_math")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.UserID != "student_001" {
		t.Errorf("user id = %q, want student_001", res.UserID)
	}
	dir := svc.Directory(context.Background())
	if len(dir.Students) != 2 || len(dir.Sessions) != 1 {
		t.Errorf("students=%d sessions=%d, want 2/1", len(dir.Students), len(dir.Sessions))
	}
}

func TestLogin_UndecodableDirectoryIsNotOverwritten(t *testing.T) {
	_, store := testutil.TestStore(t)
	doc := []byte(`{"students": [{"id": "student_001", "registration_date": "last tuesday"}]}`)
	if err := store.Write(storage.UsersDocument, doc); err != nil {
		t.Fatal(err)
	}
	svc := NewService(store)

	if _, err := svc.Login(context.Background(), "john_math"); err == nil {
		t.Fatal("expected error for undecodable users.json")
	}
	got, err := store.Read(storage.UsersDocument)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(doc) {
		t.Errorf("users.json rewritten: %s", got)
	}
}
