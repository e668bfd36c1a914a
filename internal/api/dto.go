package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/geotutor/internal/activity"
	"github.com/starford/geotutor/internal/auth"
	"github.com/starford/geotutor/internal/models"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/shapes"
	"github.com/starford/geotutor/internal/tutor"
)

// LoginRequest is the request body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username" example:"john_math"`
	Guest    bool   `json:"guest" example:"false"`
}

// LoginResponse is the login result (aliased from the domain layer).
type LoginResponse = auth.LoginResult

// LogoutRequest is the request body for POST /api/logout.
type LogoutRequest struct {
	SessionID string `json:"session_id" example:"session_1a2b3c4d" validate:"required"`
}

// Validate validates the logout request.
func (r *LogoutRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionID, validation.Required),
	)
}

// ShapesResponse wraps the shape catalogue.
type ShapesResponse struct {
	Shapes              []shapes.Shape `json:"shapes" validate:"required"`
	Count               int            `json:"count" example:"6"`
	OntologyUsed        bool           `json:"ontology_used"`
	AITutor             string         `json:"ai_tutor" example:"FATIM AI Tutor"`
	AITutorFromOntology bool           `json:"ai_tutor_from_ontology"`
}

// OntologyUser is an ontology student as listed by GET /api/users.
type OntologyUser struct {
	Username     string            `json:"username" example:"john"`
	Name         string            `json:"name" example:"John - Registered Student"`
	Type         string            `json:"type" example:"student"`
	FromOntology bool              `json:"from_ontology"`
	Details      map[string]string `json:"details"`
	Properties   map[string]string `json:"properties"`
}

// UsersResponse merges ontology students with users.json.
type UsersResponse struct {
	FromOntology        []OntologyUser       `json:"from_ontology"`
	FromJSON            models.UserDirectory `json:"from_json"`
	OntologyUserCount   int                  `json:"ontology_user_count"`
	JSONStudentCount    int                  `json:"json_student_count"`
	JSONGuestCount      int                  `json:"json_guest_count"`
	TotalUsers          int                  `json:"total_users"`
	AITutor             string               `json:"ai_tutor"`
	AITutorFromOntology bool                 `json:"ai_tutor_from_ontology"`
}

// ClassesResponse lists ontology classes by category.
type ClassesResponse struct {
	Status            string                      `json:"status" example:"success"`
	ClassesByCategory map[string][]ontology.Class `json:"classes_by_category"`
	TotalClasses      int                         `json:"total_classes"`
}

// StudentsResponse lists ontology students.
type StudentsResponse struct {
	Status        string             `json:"status" example:"success"`
	Students      []ontology.Student `json:"students"`
	TotalStudents int                `json:"total_students"`
}

// TutorResponse describes the tutor.
type TutorResponse struct {
	AITutor  tutor.Identity `json:"ai_tutor"`
	Greeting string         `json:"greeting"`
}

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message" example:"What is the volume of a cube?" validate:"required"`
	UserID  string `json:"user_id" example:"student_001"`
}

// Validate validates the chat request.
func (r *ChatRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Message, validation.Required),
	)
}

// ChatResponse is the tutor's answer.
type ChatResponse struct {
	Response            string `json:"response"`
	AITutor             string `json:"ai_tutor"`
	AITutorFromOntology bool   `json:"ai_tutor_from_ontology"`
}

// ExplainResponse is a knowledge base entry.
type ExplainResponse struct {
	Shape       string   `json:"shape" example:"cube"`
	Topic       string   `json:"topic" example:"volume"`
	Explanation string   `json:"explanation"`
	Topics      []string `json:"topics"`
}

// QuizSubmitRequest is the request body for POST /api/quiz/submit.
type QuizSubmitRequest struct {
	UserID string  `json:"user_id" example:"student_001" validate:"required"`
	Score  float64 `json:"score" example:"8"`
	Total  int     `json:"total" example:"10"`
}

// Validate validates the quiz submission.
func (r *QuizSubmitRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Score, validation.Min(0.0)),
		validation.Field(&r.Total, validation.Min(0)),
	)
}

// PracticeSubmitRequest is the request body for POST /api/practice/submit.
// Total defaults to the number of exercises.
type PracticeSubmitRequest struct {
	UserID    string                  `json:"user_id" example:"student_001" validate:"required"`
	Exercises []models.ExerciseResult `json:"exercises"`
	Correct   int                     `json:"correct" example:"4"`
	Total     int                     `json:"total" example:"5"`
}

// Validate validates the practice submission.
func (r *PracticeSubmitRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Correct, validation.Min(0)),
		validation.Field(&r.Total, validation.Min(0)),
	)
}

// SubmitResponse returns the updated record and the tutor's feedback.
type SubmitResponse struct {
	Status   string           `json:"status" example:"success"`
	Progress *models.Progress `json:"progress"`
	Feedback string           `json:"feedback"`
}

// PatternRequest is the request body for POST /api/progress/{user_id}/pattern.
type PatternRequest struct {
	Topic string `json:"topic" example:"sphere surface area" validate:"required"`
}

// Validate validates the pattern request.
func (r *PatternRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Topic, validation.Required),
	)
}

// ActivityResponse lists activity entries.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Counts  map[string]int   `json:"counts,omitempty"`
	Total   int              `json:"total"`
}
