// Package ontology loads the OWL/RDF tutoring ontology and answers the
// lookups the HTTP and MCP layers need: students, shapes with formulas,
// the AI tutor, progress records and class categories.
//
// Lookups are linear scans over the parsed individuals; the file is small
// and read once (or on change when watched).
package ontology

import (
	"slices"
	"sort"
	"strings"
)

// Class is an owl:Class entry.
type Class struct {
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Label   string `json:"label"`
	Comment string `json:"comment"`
	Parent  string `json:"parent"`
	Type    string `json:"type"`
}

// Individual is an instance with an rdf:type.
type Individual struct {
	URI        string            `json:"uri"`
	Type       string            `json:"type"`
	Label      string            `json:"label"`
	Comment    string            `json:"comment,omitempty"`
	Properties map[string]string `json:"properties"`
	// Datatypes records the xsd datatype of properties that carried one.
	Datatypes map[string]string `json:"datatypes,omitempty"`
}

// Ontology is the in-memory result of one load.
type Ontology struct {
	Path        string
	Checksum    string
	Classes     map[string]*Class
	Hierarchy   map[string][]string
	Individuals []Individual
	Loaded      bool
}

func newOntology(path string) *Ontology {
	return &Ontology{
		Path:      path,
		Classes:   make(map[string]*Class),
		Hierarchy: make(map[string][]string),
	}
}

// IsLoaded is nil-safe.
func (o *Ontology) IsLoaded() bool {
	return o != nil && o.Loaded
}

// HasClass reports whether a class with the given name was parsed.
func (o *Ontology) HasClass(name string) bool {
	if !o.IsLoaded() {
		return false
	}
	_, ok := o.Classes[name]
	return ok
}

// Class returns the named class, or nil.
func (o *Ontology) Class(name string) *Class {
	if !o.IsLoaded() {
		return nil
	}
	return o.Classes[name]
}

// ClassNames returns every class name in sorted order.
func (o *Ontology) ClassNames() []string {
	if !o.IsLoaded() {
		return nil
	}
	names := make([]string, 0, len(o.Classes))
	for n := range o.Classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Category names accepted by ClassesByCategory.
const (
	CategoryUser           = "user"
	CategoryAuthentication = "authentication"
	CategoryLearning       = "learning"
	CategoryGeometry       = "geometry"
	CategoryProgress       = "progress"
)

var categories = map[string][]string{
	CategoryUser:           {"User", "Student", "GuestUser", "Tutor", "AITutor", "HumanTutor"},
	CategoryAuthentication: {"Authentication", "LoginSession", "UserAccount", "GuestSession", "RegisteredSession"},
	CategoryLearning:       {"LearningDifficulty", "TutoringSession", "Intervention", "LearningActivity"},
	CategoryGeometry:       {"GeometricShape", "ThreeDShape", "TwoDShape", "Cube", "Sphere", "Cone", "Cylinder", "Triangle", "Rectangle", "Formula"},
	CategoryProgress:       {"Progress"},
}

// Categories lists the category names in display order.
func Categories() []string {
	return []string{CategoryUser, CategoryAuthentication, CategoryLearning, CategoryGeometry, CategoryProgress}
}

// ClassesByCategory returns the classes of a fixed category that exist in
// the ontology, in category order. Unknown categories yield an empty list.
func (o *Ontology) ClassesByCategory(category string) []Class {
	out := []Class{}
	if !o.IsLoaded() {
		return out
	}
	for _, name := range categories[category] {
		if c, ok := o.Classes[name]; ok {
			out = append(out, *c)
		}
	}
	return out
}

// Student is a Student individual prepared for the API.
type Student struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	URI        string            `json:"uri"`
	Properties map[string]string `json:"properties"`
	Details    map[string]string `json:"details"`
}

var studentDetails = []struct{ prop, key string }{
	{"studentName", "full_name"},
	{"hasAccount", "account"},
	{"hasActiveSession", "active_session"},
	{"hasTutor", "tutor"},
}

// Students returns every Student individual.
func (o *Ontology) Students() []Student {
	out := []Student{}
	if !o.IsLoaded() {
		return out
	}
	for _, ind := range o.Individuals {
		if ind.Type != "Student" {
			continue
		}
		s := Student{
			Name:       orDefault(ind.Label, "Unknown Student"),
			Type:       "Student",
			URI:        ind.URI,
			Properties: nonNilMap(ind.Properties),
			Details:    map[string]string{},
		}
		for _, d := range studentDetails {
			if v, ok := ind.Properties[d.prop]; ok {
				s.Details[d.key] = v
			}
		}
		out = append(out, s)
	}
	return out
}

// FindStudent returns the first student whose name contains username,
// compared case-insensitively.
func (o *Ontology) FindStudent(username string) (Student, bool) {
	needle := strings.ToLower(username)
	for _, s := range o.Students() {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			return s, true
		}
	}
	return Student{}, false
}

// Formula is an ontology formula linked from a shape.
type Formula struct {
	Type       string `json:"type"`
	Expression string `json:"expression"`
	Source     string `json:"source"`
}

// Shape is a geometric shape from the ontology.
type Shape struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Category   string            `json:"category"`
	URI        string            `json:"uri"`
	Properties map[string]string `json:"properties"`
	Formulas   []Formula         `json:"formulas"`
	FromClass  bool              `json:"from_class,omitempty"`
}

// ShapeTypes is the fixed list of shape class names, 3D first.
var ShapeTypes = []string{"Cube", "Sphere", "Cone", "Cylinder", "Triangle", "Rectangle"}

// ShapeCategory returns "3D" or "2D" for a shape type.
func ShapeCategory(shapeType string) string {
	switch shapeType {
	case "Cube", "Sphere", "Cone", "Cylinder":
		return "3D"
	default:
		return "2D"
	}
}

// ShapesWithFormulas returns the shape individuals with their linked
// formulas. Without shape individuals, shapes are derived from the shape
// classes instead.
func (o *Ontology) ShapesWithFormulas() []Shape {
	out := []Shape{}
	if !o.IsLoaded() {
		return out
	}
	for _, ind := range o.Individuals {
		if !slices.Contains(ShapeTypes, ind.Type) {
			continue
		}
		out = append(out, Shape{
			Name:       orDefault(ind.Label, ind.Type),
			Type:       ind.Type,
			Category:   ShapeCategory(ind.Type),
			URI:        ind.URI,
			Properties: nonNilMap(ind.Properties),
			Formulas:   o.formulasFor(ind),
		})
	}
	if len(out) > 0 {
		return out
	}

	for _, name := range ShapeTypes {
		c, ok := o.Classes[name]
		if !ok {
			continue
		}
		out = append(out, Shape{
			Name:       orDefault(c.Label, name),
			Type:       name,
			Category:   ShapeCategory(name),
			URI:        c.URI,
			Properties: map[string]string{},
			Formulas:   []Formula{},
			FromClass:  true,
		})
	}
	return out
}

// formulasFor resolves every *formula* property of a shape to the
// formulaExpression of the individuals it points at. Property names are
// visited in sorted order so the result is stable.
func (o *Ontology) formulasFor(shape Individual) []Formula {
	formulas := []Formula{}
	props := make([]string, 0, len(shape.Properties))
	for k := range shape.Properties {
		if strings.Contains(strings.ToLower(k), "formula") {
			props = append(props, k)
		}
	}
	sort.Strings(props)

	for _, prop := range props {
		ref := shape.Properties[prop]
		if ref == "" {
			continue
		}
		for _, f := range o.Individuals {
			if !strings.HasSuffix(f.URI, "#"+ref) && !strings.Contains(f.URI, ref) {
				continue
			}
			expr := f.Properties["formulaExpression"]
			if expr == "" {
				continue
			}
			kind := strings.ReplaceAll(prop, "has", "")
			kind = strings.TrimSpace(strings.ReplaceAll(kind, "Formula", ""))
			formulas = append(formulas, Formula{Type: kind, Expression: expr, Source: "ontology"})
		}
	}
	return formulas
}

// Record is a generic typed individual for passthrough endpoints.
type Record struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	URI        string            `json:"uri"`
	Properties map[string]string `json:"properties"`
}

func (o *Ontology) recordsOfType(typ, defaultName string) []Record {
	out := []Record{}
	if !o.IsLoaded() {
		return out
	}
	for _, ind := range o.Individuals {
		if ind.Type != typ {
			continue
		}
		out = append(out, Record{
			Name:       orDefault(ind.Label, defaultName),
			Type:       typ,
			URI:        ind.URI,
			Properties: nonNilMap(ind.Properties),
		})
	}
	return out
}

// LearningActivities returns LearningActivity individuals.
func (o *Ontology) LearningActivities() []Record {
	return o.recordsOfType("LearningActivity", "Learning Activity")
}

// TutoringSessions returns TutoringSession individuals.
func (o *Ontology) TutoringSessions() []Record {
	return o.recordsOfType("TutoringSession", "Tutoring Session")
}

// ProgressRecord is a Progress individual with its metrics extracted.
type ProgressRecord struct {
	Name    string            `json:"name"`
	Type    string            `json:"type"`
	URI     string            `json:"uri"`
	Metrics map[string]string `json:"metrics"`
}

var progressMetrics = []struct{ prop, key string }{
	{"quizScore", "quiz_score"},
	{"practiceScore", "practice_score"},
	{"completionPercentage", "completion_percentage"},
	{"lastActivityDate", "last_activity"},
}

// ProgressRecords returns Progress individuals.
func (o *Ontology) ProgressRecords() []ProgressRecord {
	out := []ProgressRecord{}
	if !o.IsLoaded() {
		return out
	}
	for _, ind := range o.Individuals {
		if ind.Type != "Progress" {
			continue
		}
		rec := ProgressRecord{
			Name:    orDefault(ind.Label, "Progress"),
			Type:    "Progress",
			URI:     ind.URI,
			Metrics: map[string]string{},
		}
		for _, m := range progressMetrics {
			if v, ok := ind.Properties[m.prop]; ok {
				rec.Metrics[m.key] = v
			}
		}
		out = append(out, rec)
	}
	return out
}

// FindProgress returns the first progress record whose name or URI
// contains userID.
func (o *Ontology) FindProgress(userID string) (ProgressRecord, bool) {
	if userID == "" {
		return ProgressRecord{}, false
	}
	for _, p := range o.ProgressRecords() {
		if strings.Contains(p.Name, userID) || strings.Contains(p.URI, userID) {
			return p, true
		}
	}
	return ProgressRecord{}, false
}

// Tutor describes the AI tutor.
type Tutor struct {
	Name           string            `json:"name"`
	Type           string            `json:"type"`
	URI            string            `json:"uri,omitempty"`
	Properties     map[string]string `json:"properties,omitempty"`
	Specialization string            `json:"specialization"`
	FromOntology   bool              `json:"from_ontology"`
	Inferred       bool              `json:"inferred,omitempty"`
}

var tutorPatterns = []struct{ field, pattern string }{
	{"type", "aitutor"},
	{"type", "tutor"},
	{"label", "fatim"},
	{"label", "tutor"},
	{"uri", "tutorfatim"},
}

// AITutor finds the tutor individual. Individuals are scanned in document
// order and each is tested against every pattern, so an earlier individual
// matching a weaker pattern wins over a later one matching a stronger
// pattern. When nothing matches an inferred tutor is returned. Returns nil
// when the ontology is not loaded.
func (o *Ontology) AITutor() *Tutor {
	if !o.IsLoaded() {
		return nil
	}
	for _, ind := range o.Individuals {
		for _, p := range tutorPatterns {
			var value string
			switch p.field {
			case "type":
				value = ind.Type
			case "label":
				value = ind.Label
			case "uri":
				value = ind.URI
			}
			if !strings.Contains(strings.ToLower(value), p.pattern) {
				continue
			}
			return &Tutor{
				Name:           orDefault(ind.Label, "AI Tutor"),
				Type:           orDefault(ind.Type, "AITutor"),
				URI:            ind.URI,
				Properties:     nonNilMap(ind.Properties),
				Specialization: orDefault(ind.Properties["tutorSpecialization"], "Geometry"),
				FromOntology:   true,
			}
		}
	}
	return &Tutor{
		Name:           "FATIM AI Tutor",
		Type:           "AITutor",
		Specialization: "Geometric Shapes and Formulas",
		FromOntology:   true,
		Inferred:       true,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
