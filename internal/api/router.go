// Package api implements the GeoTutor HTTP API using chi.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/geotutor/internal/activity"
	"github.com/starford/geotutor/internal/auth"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/progress"
	"github.com/starford/geotutor/internal/sse"
	"github.com/starford/geotutor/internal/tutor"
)

// Deps are the services behind the API. Activity and Events may be nil.
type Deps struct {
	Auth     *auth.Service
	Progress *progress.Service
	Tutor    *tutor.Tutor
	Ontology ontology.Source
	Activity activity.Store
	Events   *sse.Broker
}

// NewRouter creates a chi router with all API routes mounted. It is meant
// to be mounted under /api.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d)

	r := chi.NewRouter()

	// Users and sessions.
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/users", h.Users)

	// Shapes and ontology.
	r.Get("/shapes", h.Shapes)
	r.Route("/ontology", func(r chi.Router) {
		r.Get("/classes", h.OntologyClasses)
		r.Get("/students", h.OntologyStudents)
		r.Get("/stats", h.OntologyStats)
		r.Get("/activities", h.OntologyActivities)
		r.Get("/sessions", h.OntologySessions)
		r.Get("/progress", h.OntologyProgress)
	})

	// Tutor.
	r.Get("/tutor", h.TutorInfo)
	r.Get("/tutor/explain", h.Explain)
	r.Post("/chat", h.Chat)

	// Progress.
	r.Get("/progress/{user_id}", h.GetProgress)
	r.Post("/progress/{user_id}", h.SaveProgress)
	r.Post("/progress/{user_id}/pattern", h.UpdatePattern)
	r.Post("/quiz/submit", h.SubmitQuiz)
	r.Post("/practice/submit", h.SubmitPractice)

	// Activity log.
	r.Get("/activity/search", h.SearchActivity)
	r.Get("/activity/{user_id}", h.UserActivity)

	if d.Events != nil {
		r.Get("/events", d.Events.ServeHTTP)
	}

	return r
}
