package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/geotutor/internal/activity"
	"github.com/starford/geotutor/internal/apperr"
	"github.com/starford/geotutor/internal/models"
	"github.com/starford/geotutor/internal/progress"
	"github.com/starford/geotutor/internal/sse"
)

func userIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "user_id"))
}

// writeProgressErr maps progress service errors to responses.
func writeProgressErr(w http.ResponseWriter, op, userID string, err error) {
	if errors.Is(err, apperr.ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeInternal(w, op, err, slog.String("user_id", userID))
}

// GetProgress handles GET /api/progress/{user_id}.
//
//	@Summary		Progress record for a user
//	@Tags			progress
//	@Produce		json
//	@Param			user_id	path		string	true	"User id"
//	@Success		200		{object}	models.Progress
//	@Router			/progress/{user_id} [get]
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.d.Progress.Get(r.Context(), userIDParam(r)))
}

// SaveProgress handles POST /api/progress/{user_id}.
//
//	@Summary		Apply a quiz and/or practice update
//	@Tags			progress
//	@Accept			json
//	@Produce		json
//	@Param			user_id	path		string			true	"User id"
//	@Param			body	body		progress.Update	true	"Update"
//	@Success		200		{object}	models.Progress
//	@Failure		400		{object}	errResponse
//	@Router			/progress/{user_id} [post]
func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	var req progress.Update
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	p, err := h.d.Progress.Save(r.Context(), userID, req)
	if err != nil {
		writeProgressErr(w, "save progress", userID, err)
		return
	}
	h.record(r.Context(), userID, activity.KindProgress, "progress updated", req)
	h.publish(sse.TypeProgressUpdated, userID)
	writeJSON(w, http.StatusOK, p)
}

// SubmitQuiz handles POST /api/quiz/submit.
//
//	@Summary		Record a quiz and return feedback
//	@Tags			progress
//	@Accept			json
//	@Produce		json
//	@Param			body	body		QuizSubmitRequest	true	"Quiz result"
//	@Success		200		{object}	SubmitResponse
//	@Failure		400		{object}	errResponse
//	@Router			/quiz/submit [post]
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizSubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	p, err := h.d.Progress.SaveQuizResult(r.Context(), req.UserID, req.Score, req.Total)
	if err != nil {
		writeProgressErr(w, "save quiz", req.UserID, err)
		return
	}
	feedback := h.d.Tutor.QuizFeedback(req.Score, req.Total)
	h.record(r.Context(), req.UserID, activity.KindQuiz,
		fmt.Sprintf("quiz %g/%d", req.Score, req.Total), req)
	h.publish(sse.TypeProgressUpdated, req.UserID)
	writeJSON(w, http.StatusOK, SubmitResponse{Status: "success", Progress: p, Feedback: feedback})
}

// SubmitPractice handles POST /api/practice/submit.
//
//	@Summary		Record a practice round and return feedback
//	@Tags			progress
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PracticeSubmitRequest	true	"Practice result"
//	@Success		200		{object}	SubmitResponse
//	@Failure		400		{object}	errResponse
//	@Router			/practice/submit [post]
func (h *Handler) SubmitPractice(w http.ResponseWriter, r *http.Request) {
	var req PracticeSubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if req.Exercises == nil {
		req.Exercises = []models.ExerciseResult{}
	}
	total := req.Total
	if total == 0 {
		total = len(req.Exercises)
	}

	p, err := h.d.Progress.SavePracticeResult(r.Context(), req.UserID, req.Exercises, req.Correct)
	if err != nil {
		writeProgressErr(w, "save practice", req.UserID, err)
		return
	}
	feedback := h.d.Tutor.PracticeFeedback(req.Correct, total, req.Exercises)
	h.record(r.Context(), req.UserID, activity.KindPractice,
		fmt.Sprintf("practice %d/%d", req.Correct, total), req)
	h.publish(sse.TypeProgressUpdated, req.UserID)
	writeJSON(w, http.StatusOK, SubmitResponse{Status: "success", Progress: p, Feedback: feedback})
}

// UpdatePattern handles POST /api/progress/{user_id}/pattern.
func (h *Handler) UpdatePattern(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	var req PatternRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	p, err := h.d.Progress.UpdateLearningPattern(r.Context(), userID, req.Topic)
	if err != nil {
		writeProgressErr(w, "update pattern", userID, err)
		return
	}
	h.record(r.Context(), userID, activity.KindPattern, req.Topic, nil)
	h.publish(sse.TypeProgressUpdated, userID)
	writeJSON(w, http.StatusOK, p)
}
