package api

import (
	"net/http"

	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/shapes"
)

const ontologyNotLoaded = "Ontology not loaded"

// Shapes handles GET /api/shapes.
//
//	@Summary		Shape catalogue, overlaid with ontology shapes when available
//	@Tags			shapes
//	@Produce		json
//	@Success		200	{object}	ShapesResponse
//	@Router			/shapes [get]
func (h *Handler) Shapes(w http.ResponseWriter, _ *http.Request) {
	list, used := shapes.Catalogue(h.current())
	id := h.d.Tutor.Identity()
	writeJSON(w, http.StatusOK, ShapesResponse{
		Shapes:              list,
		Count:               len(list),
		OntologyUsed:        used,
		AITutor:             id.Name,
		AITutorFromOntology: id.FromOntology,
	})
}

// OntologyClasses handles GET /api/ontology/classes. Without an ontology
// it answers 200 with an error body.
func (h *Handler) OntologyClasses(w http.ResponseWriter, _ *http.Request) {
	o := h.current()
	if !o.IsLoaded() {
		writeJSON(w, http.StatusOK, errorBody(ontologyNotLoaded))
		return
	}
	byCategory := make(map[string][]ontology.Class)
	for _, c := range ontology.Categories() {
		byCategory[c] = o.ClassesByCategory(c)
	}
	writeJSON(w, http.StatusOK, ClassesResponse{
		Status:            "success",
		ClassesByCategory: byCategory,
		TotalClasses:      len(o.Classes),
	})
}

// OntologyStudents handles GET /api/ontology/students.
func (h *Handler) OntologyStudents(w http.ResponseWriter, _ *http.Request) {
	o := h.current()
	if !o.IsLoaded() {
		writeJSON(w, http.StatusBadRequest, errorBody(ontologyNotLoaded))
		return
	}
	students := o.Students()
	writeJSON(w, http.StatusOK, StudentsResponse{
		Status:        "success",
		Students:      students,
		TotalStudents: len(students),
	})
}

// OntologyStats handles GET /api/ontology/stats.
func (h *Handler) OntologyStats(w http.ResponseWriter, _ *http.Request) {
	o := h.current()
	if !o.IsLoaded() {
		writeJSON(w, http.StatusBadRequest, errorBody(ontologyNotLoaded))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"stats":    o.Stats(),
		"checksum": o.Checksum,
	})
}

// OntologyActivities handles GET /api/ontology/activities.
func (h *Handler) OntologyActivities(w http.ResponseWriter, _ *http.Request) {
	writeRecords(w, h.current(), "activities", (*ontology.Ontology).LearningActivities)
}

// OntologySessions handles GET /api/ontology/sessions.
func (h *Handler) OntologySessions(w http.ResponseWriter, _ *http.Request) {
	writeRecords(w, h.current(), "sessions", (*ontology.Ontology).TutoringSessions)
}

// OntologyProgress handles GET /api/ontology/progress.
func (h *Handler) OntologyProgress(w http.ResponseWriter, _ *http.Request) {
	writeRecords(w, h.current(), "progress", (*ontology.Ontology).ProgressRecords)
}

func writeRecords[T any](w http.ResponseWriter, o *ontology.Ontology, key string, list func(*ontology.Ontology) []T) {
	if !o.IsLoaded() {
		writeJSON(w, http.StatusBadRequest, errorBody(ontologyNotLoaded))
		return
	}
	items := list(o)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		key:      items,
		"total":  len(items),
	})
}
