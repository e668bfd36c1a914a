package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/geotutor/internal/activity"
	"github.com/starford/geotutor/internal/apperr"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	d Deps
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{d: d}
}

// current returns the current ontology, or nil.
func (h *Handler) current() *ontology.Ontology {
	if h.d.Ontology == nil {
		return nil
	}
	return h.d.Ontology.Current()
}

// record logs an activity entry. Failures never fail the request.
func (h *Handler) record(ctx context.Context, userID, kind, summary string, payload any) {
	if h.d.Activity == nil || userID == "" {
		return
	}
	if err := h.d.Activity.Record(ctx, userID, kind, summary, payload); err != nil {
		slog.Warn("activity record failed",
			slog.String("user_id", userID),
			slog.String("kind", kind),
			slog.String("error", err.Error()))
	}
}

func (h *Handler) publish(kind, userID string) {
	if h.d.Events != nil {
		h.d.Events.PublishUserEvent(kind, userID)
	}
}

// Login handles POST /api/login.
//
//	@Summary		Log in as a guest, an ontology student or a registered student
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	errResponse
//	@Router			/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	ctx := r.Context()

	var (
		res *LoginResponse
		err error
	)
	username := strings.TrimSpace(req.Username)
	switch {
	case req.Guest:
		res, err = h.d.Auth.CreateGuest(ctx)
	case username == "":
		writeJSON(w, http.StatusBadRequest, errorBody("Username required"))
		return
	default:
		if st, ok := h.current().FindStudent(username); ok {
			res, err = h.d.Auth.LoginFromOntology(ctx, st)
		} else {
			res, err = h.d.Auth.Login(ctx, username)
		}
	}
	if err != nil {
		writeInternal(w, "login", err, slog.String("username", username))
		return
	}

	h.record(ctx, res.UserID, activity.KindLogin, res.Name+" logged in", map[string]any{
		"type":          res.Type,
		"session_id":    res.SessionID,
		"from_ontology": res.FromOntology,
	})
	h.publish(sse.TypeUserLogin, res.UserID)
	writeJSON(w, http.StatusOK, res)
}

// Logout handles POST /api/logout.
//
//	@Summary		End a session
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LogoutRequest	true	"Session to end"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	session, err := h.d.Auth.EndSession(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("session not found"))
		} else {
			writeInternal(w, "logout", err, slog.String("session_id", req.SessionID))
		}
		return
	}
	h.record(r.Context(), session.UserID, activity.KindLogout, "logged out", map[string]string{"session_id": session.SessionID})
	h.publish(sse.TypeUserLogout, session.UserID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"session": session,
	})
}

// Users handles GET /api/users.
//
//	@Summary		List ontology students and users.json records
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	UsersResponse
//	@Router			/users [get]
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	students := h.current().Students()
	fromOntology := make([]OntologyUser, 0, len(students))
	for _, st := range students {
		name := st.Name
		if name == "" {
			name = "Unknown"
		}
		first, _, _ := strings.Cut(name, " - ")
		fromOntology = append(fromOntology, OntologyUser{
			Username:     strings.ToLower(strings.ReplaceAll(first, " ", "_")),
			Name:         name,
			Type:         "student",
			FromOntology: true,
			Details:      st.Details,
			Properties:   st.Properties,
		})
	}

	dir := h.d.Auth.Directory(r.Context())
	id := h.d.Tutor.Identity()
	writeJSON(w, http.StatusOK, UsersResponse{
		FromOntology:        fromOntology,
		FromJSON:            dir,
		OntologyUserCount:   len(fromOntology),
		JSONStudentCount:    len(dir.Students),
		JSONGuestCount:      len(dir.Guests),
		TotalUsers:          len(fromOntology) + len(dir.Students) + len(dir.Guests),
		AITutor:             id.Name,
		AITutorFromOntology: id.FromOntology,
	})
}
