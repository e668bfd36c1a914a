// Package auth manages guests, students and login sessions in users.json.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/geotutor/internal/apperr"
	"github.com/starford/geotutor/internal/models"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/storage"
)

// LoginResult is returned by guest creation and student login.
type LoginResult struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`

	FromOntology bool              `json:"from_ontology"`
	Details      map[string]string `json:"details,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// Service coordinates user and session bookkeeping.
type Service struct {
	store storage.Provider
	now   func() time.Time
}

// NewService creates a new auth service over store.
func NewService(store storage.Provider) *Service {
	return &Service{store: store, now: time.Now}
}

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Directory returns the whole users.json document. A missing or unreadable
// document yields an empty directory.
func (s *Service) Directory(_ context.Context) models.UserDirectory {
	var dir models.UserDirectory
	storage.ReadJSON(s.store, storage.UsersDocument, &dir)
	dir.Normalize()
	return dir
}

// CreateGuest registers a new guest and opens a session for it.
func (s *Service) CreateGuest(_ context.Context) (*LoginResult, error) {
	now := s.now()
	guest := models.User{
		ID:        newID("guest"),
		Name:      "Guest",
		Type:      models.UserTypeGuest,
		CreatedAt: models.At(now),
	}
	var session models.Session
	err := s.update(func(dir *models.UserDirectory) error {
		dir.Guests = append(dir.Guests, guest)
		session = s.appendSession(dir, guest.ID, models.UserTypeGuest)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		UserID:    guest.ID,
		Name:      guest.Name,
		Type:      models.UserTypeGuest,
		SessionID: session.SessionID,
	}, nil
}

// Login signs in a student by username or (case-insensitive) name,
// registering a new student on first sight.
func (s *Service) Login(_ context.Context, username string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username: %w", apperr.ErrInvalidInput)
	}

	var res *LoginResult
	err := s.update(func(dir *models.UserDirectory) error {
		for _, st := range dir.Students {
			if st.Username == username || strings.EqualFold(st.Name, username) {
				session := s.appendSession(dir, st.ID, models.UserTypeStudent)
				res = &LoginResult{
					UserID:    st.ID,
					Name:      st.Name,
					Username:  st.Username,
					Type:      models.UserTypeStudent,
					SessionID: session.SessionID,
				}
				return nil
			}
		}

		now := s.now()
		st := models.User{
			ID:               newID("student"),
			Username:         strings.ReplaceAll(strings.ToLower(username), " ", "_"),
			Name:             username,
			Type:             models.UserTypeStudent,
			RegistrationDate: models.At(now),
		}
		dir.Students = append(dir.Students, st)
		session := s.appendSession(dir, st.ID, models.UserTypeStudent)
		res = &LoginResult{
			UserID:    st.ID,
			Name:      st.Name,
			Username:  st.Username,
			Type:      models.UserTypeStudent,
			SessionID: session.SessionID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// LoginFromOntology signs in a student defined in the ontology. The user id
// is the student label lowercased with spaces replaced by underscores; the
// student is not added to users.json but a session is recorded.
func (s *Service) LoginFromOntology(ctx context.Context, st ontology.Student) (*LoginResult, error) {
	userID := strings.ToLower(strings.ReplaceAll(st.Name, " ", "_"))
	session, err := s.CreateSession(ctx, userID, models.UserTypeStudent)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		UserID:       userID,
		Name:         st.Name,
		Type:         models.UserTypeStudent,
		SessionID:    session.SessionID,
		FromOntology: true,
		Details:      st.Details,
		Properties:   st.Properties,
	}, nil
}

// CreateSession opens a session for an arbitrary user id.
func (s *Service) CreateSession(_ context.Context, userID, userType string) (*models.Session, error) {
	var session models.Session
	err := s.update(func(dir *models.UserDirectory) error {
		session = s.appendSession(dir, userID, userType)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// EndSession deactivates a session. Unknown ids yield apperr.ErrNotFound.
func (s *Service) EndSession(_ context.Context, sessionID string) (*models.Session, error) {
	var ended *models.Session
	err := s.update(func(dir *models.UserDirectory) error {
		for i := range dir.Sessions {
			if dir.Sessions[i].SessionID != sessionID {
				continue
			}
			now := s.now()
			dir.Sessions[i].IsActive = false
			dir.Sessions[i].EndTime = models.At(now)
			cp := dir.Sessions[i]
			ended = &cp
			return nil
		}
		return apperr.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

func (s *Service) appendSession(dir *models.UserDirectory, userID, userType string) models.Session {
	session := models.Session{
		SessionID: newID("session"),
		UserID:    userID,
		UserType:  userType,
		StartTime: models.Timestamp{Time: s.now()},
		IsActive:  true,
	}
	dir.Sessions = append(dir.Sessions, session)
	return session
}

func (s *Service) update(fn func(dir *models.UserDirectory) error) error {
	err := storage.UpdateJSON(s.store, storage.UsersDocument, func(dir *models.UserDirectory) error {
		dir.Normalize()
		return fn(dir)
	})
	if err != nil {
		return fmt.Errorf("auth: update users: %w", err)
	}
	return nil
}
