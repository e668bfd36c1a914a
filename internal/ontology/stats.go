package ontology

import (
	"log/slog"
	"slices"
	"sort"
	"strings"
)

// Stats summarises an ontology by family.
type Stats struct {
	TotalClasses     int `json:"total_classes"`
	TotalIndividuals int `json:"total_individuals"`
	UserClasses      int `json:"user_classes"`
	GeometryClasses  int `json:"geometry_classes"`
	LearningClasses  int `json:"learning_classes"`
	Students         int `json:"students"`
	Tutors           int `json:"tutors"`
	Shapes           int `json:"shapes"`
	Sessions         int `json:"sessions"`
	ProgressRecords  int `json:"progress_records"`
}

func containsAny(s string, needles ...string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Stats counts classes and individuals. Returns the zero value when the
// ontology is not loaded.
func (o *Ontology) Stats() Stats {
	if !o.IsLoaded() {
		return Stats{}
	}
	s := Stats{
		TotalClasses:     len(o.Classes),
		TotalIndividuals: len(o.Individuals),
	}
	for name := range o.Classes {
		if containsAny(name, "user", "student", "tutor") {
			s.UserClasses++
		}
		if containsAny(name, "shape", "formula") {
			s.GeometryClasses++
		}
		if containsAny(name, "learning", "session", "progress") {
			s.LearningClasses++
		}
	}
	for _, ind := range o.Individuals {
		switch {
		case ind.Type == "Student":
			s.Students++
		case ind.Type == "Progress":
			s.ProgressRecords++
		case slices.Contains(ShapeTypes, ind.Type):
			s.Shapes++
		}
		if containsAny(ind.Type, "tutor") {
			s.Tutors++
		}
		if containsAny(ind.Type, "session") {
			s.Sessions++
		}
	}
	return s
}

// LogSummary writes the load summary: counts, hierarchy, and individuals
// grouped by type (first three labels each).
func (o *Ontology) LogSummary(logger *slog.Logger) {
	if !o.IsLoaded() {
		logger.Warn("ontology: not loaded")
		return
	}
	st := o.Stats()
	logger.Info("ontology: loaded",
		slog.String("path", o.Path),
		slog.Int("classes", st.TotalClasses),
		slog.Int("individuals", st.TotalIndividuals),
		slog.Int("students", st.Students),
		slog.Int("shapes", st.Shapes))

	parents := make([]string, 0, len(o.Hierarchy))
	for p := range o.Hierarchy {
		parents = append(parents, p)
	}
	sort.Strings(parents)
	for _, p := range parents {
		logger.Debug("ontology: hierarchy",
			slog.String("parent", p),
			slog.String("children", strings.Join(o.Hierarchy[p], ", ")))
	}

	byType := make(map[string][]string)
	var order []string
	for _, ind := range o.Individuals {
		if _, ok := byType[ind.Type]; !ok {
			order = append(order, ind.Type)
		}
		byType[ind.Type] = append(byType[ind.Type], ind.Label)
	}
	for _, t := range order {
		labels := byType[t]
		sample := labels
		if len(sample) > 3 {
			sample = sample[:3]
		}
		logger.Debug("ontology: individuals",
			slog.String("type", t),
			slog.Int("count", len(labels)),
			slog.String("sample", strings.Join(sample, ", ")))
	}
}
