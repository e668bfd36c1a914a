package api

import (
	"net/http"
	"strings"

	"github.com/starford/geotutor/internal/activity"
	"github.com/starford/geotutor/internal/tutor"
)

// TutorInfo handles GET /api/tutor.
//
//	@Summary		Tutor identity and a greeting
//	@Tags			tutor
//	@Produce		json
//	@Success		200	{object}	TutorResponse
//	@Router			/tutor [get]
func (h *Handler) TutorInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TutorResponse{
		AITutor:  h.d.Tutor.Identity(),
		Greeting: h.d.Tutor.Greeting(),
	})
}

// Chat handles POST /api/chat.
//
//	@Summary		Ask the tutor a question
//	@Tags			tutor
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"Message"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	errResponse
//	@Router			/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	answer := h.d.Tutor.Respond(req.Message)
	id := h.d.Tutor.Identity()
	h.record(r.Context(), req.UserID, activity.KindChat, req.Message, map[string]string{"response": answer})
	writeJSON(w, http.StatusOK, ChatResponse{
		Response:            answer,
		AITutor:             id.Name,
		AITutorFromOntology: id.FromOntology,
	})
}

// Explain handles GET /api/tutor/explain?shape=&topic=.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shape := strings.ToLower(strings.TrimSpace(q.Get("shape")))
	topic := strings.ToLower(strings.TrimSpace(q.Get("topic")))
	if shape == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("shape is required"))
		return
	}
	text, ok := h.d.Tutor.Explain(shape, topic)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("no explanation for "+strings.TrimSpace(shape+" "+topic)))
		return
	}
	if topic == "" {
		topic = tutor.TopicDescription
	}
	writeJSON(w, http.StatusOK, ExplainResponse{
		Shape:       shape,
		Topic:       topic,
		Explanation: text,
		Topics:      tutor.Topics(shape),
	})
}
