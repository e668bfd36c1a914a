// Package models defines the domain types persisted by GeoTutor.
package models

// User types.
const (
	UserTypeStudent = "student"
	UserTypeGuest   = "guest"
)

// User is a student or guest record in users.json.
type User struct {
	ID               string     `json:"id"`
	Username         string     `json:"username,omitempty"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	Type             string     `json:"type"`
	RegistrationDate *Timestamp `json:"registration_date,omitempty"`
	CreatedAt        *Timestamp `json:"created_at,omitempty"`
}

// Session is a login session. Sessions are never deleted, only deactivated.
type Session struct {
	SessionID string     `json:"session_id"`
	UserID    string     `json:"user_id"`
	UserType  string     `json:"user_type"`
	StartTime Timestamp  `json:"start_time"`
	EndTime   *Timestamp `json:"end_time,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// UserDirectory is the whole users.json document.
type UserDirectory struct {
	Students []User    `json:"students"`
	Guests   []User    `json:"guests"`
	Sessions []Session `json:"sessions"`
}

// Normalize replaces nil collections so the document always serialises
// with empty arrays.
func (d *UserDirectory) Normalize() {
	if d.Students == nil {
		d.Students = []User{}
	}
	if d.Guests == nil {
		d.Guests = []User{}
	}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
}
