package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// UserActivity handles GET /api/activity/{user_id}?limit=.
func (h *Handler) UserActivity(w http.ResponseWriter, r *http.Request) {
	if h.d.Activity == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("activity log disabled"))
		return
	}
	userID := userIDParam(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.d.Activity.ListByUser(r.Context(), userID, limit)
	if err != nil {
		writeInternal(w, "list activity", err, slog.String("user_id", userID))
		return
	}
	counts, err := h.d.Activity.CountsByKind(r.Context(), userID)
	if err != nil {
		writeInternal(w, "count activity", err, slog.String("user_id", userID))
		return
	}
	writeJSON(w, http.StatusOK, ActivityResponse{Entries: entries, Counts: counts, Total: len(entries)})
}

// SearchActivity handles GET /api/activity/search?q=&limit=.
func (h *Handler) SearchActivity(w http.ResponseWriter, r *http.Request) {
	if h.d.Activity == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("activity log disabled"))
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.d.Activity.Search(r.Context(), q, limit)
	if err != nil {
		writeInternal(w, "search activity", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, ActivityResponse{Entries: entries, Total: len(entries)})
}
