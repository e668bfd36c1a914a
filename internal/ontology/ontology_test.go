package ontology

import (
	"encoding/xml"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadFixture(t *testing.T) *Ontology {
	t.Helper()
	o, err := Load(filepath.Join("testdata", "its.owl"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return o
}

func TestLoad_Classes(t *testing.T) {
	o := loadFixture(t)
	if !o.Loaded {
		t.Fatal("Loaded = false")
	}
	if len(o.Classes) != 10 {
		t.Errorf("classes = %d, want 10 (%v)", len(o.Classes), o.ClassNames())
	}

	user := o.Class("User")
	if user == nil || user.Comment != "Anyone using the tutoring system" {
		t.Errorf("User = %+v", user)
	}
	if got := o.Class("Tutor").Label; got != "Tutor" {
		t.Errorf("label fallback = %q, want Tutor", got)
	}
	if got := o.Class("AITutor").Parent; got != "Tutor" {
		t.Errorf("AITutor parent = %q", got)
	}
	// subClassOf without a resource (a restriction) leaves no parent.
	if got := o.Class("Formula").Parent; got != "" {
		t.Errorf("Formula parent = %q, want empty", got)
	}
	if o.Checksum == "" {
		t.Error("checksum not set")
	}
}

func TestLoad_Hierarchy(t *testing.T) {
	o := loadFixture(t)
	want := map[string][]string{
		"User":           {"Student", "Tutor"},
		"Tutor":          {"AITutor"},
		"GeometricShape": {"ThreeDShape"},
		"ThreeDShape":    {"Cube", "Sphere"},
	}
	if diff := cmp.Diff(want, o.Hierarchy); diff != "" {
		t.Errorf("hierarchy mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Individuals(t *testing.T) {
	o := loadFixture(t)
	if len(o.Individuals) != 9 {
		t.Fatalf("individuals = %d, want 9", len(o.Individuals))
	}
	john := o.Individuals[0]
	want := Individual{
		URI:     "http://www.semanticweb.org/its#StudentJohn",
		Type:    "Student",
		Label:   "John - Registered Student",
		Comment: "",
		Properties: map[string]string{
			"studentName": "John Smith",
			"hasAccount":  "JohnAccount",
			"hasTutor":    "TutorFATIM",
		},
		Datatypes: map[string]string{
			"studentName": "http://www.w3.org/2001/XMLSchema#string",
		},
	}
	if diff := cmp.Diff(want, john); diff != "" {
		t.Errorf("john mismatch (-want +got):\n%s", diff)
	}

	// Individuals without a label take their type name.
	var sphere *Individual
	for i := range o.Individuals {
		if o.Individuals[i].Type == "Sphere" {
			sphere = &o.Individuals[i]
		}
	}
	if sphere == nil || sphere.Label != "Sphere" {
		t.Errorf("sphere = %+v", sphere)
	}
}

func TestLoad_MissingFileUsesSample(t *testing.T) {
	o, err := Load(filepath.Join(t.TempDir(), "missing.xml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !o.Loaded {
		t.Error("sample ontology should be loaded")
	}
	if len(o.Classes) < 10 {
		t.Errorf("classes = %d, want >= 10", len(o.Classes))
	}
	students := o.Students()
	if len(students) != 2 || students[0].Details["full_name"] != "John" {
		t.Errorf("students = %+v", students)
	}
}

func TestRead_MissingFileHasNoFallback(t *testing.T) {
	o, err := Read(filepath.Join(t.TempDir(), "missing.xml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
	if o != nil {
		t.Errorf("ontology = %+v, want nil", o)
	}
}

func TestLoad_MalformedXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xml")
	if err := os.WriteFile(path, []byte("<rdf:RDF><owl:Class"), 0o644); err != nil {
		t.Fatal(err)
	}
	o, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if o.IsLoaded() {
		t.Error("malformed ontology must not be loaded")
	}
}

func TestLoad_DoctypeEntities(t *testing.T) {
	o, err := Load(filepath.Join("testdata", "entities.owl"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !o.HasClass("Student") {
		t.Fatalf("classes = %v", o.ClassNames())
	}
	if got := o.Class("Student").URI; got != "http://www.semanticweb.org/its#Student" {
		t.Errorf("class uri = %q", got)
	}

	students := o.Students()
	if len(students) != 1 {
		t.Fatalf("students = %+v", students)
	}
	if students[0].Details["full_name"] != "Ada Lovelace" {
		t.Errorf("details = %v", students[0].Details)
	}
	ind := o.Individuals[0]
	if ind.Datatypes["studentName"] != "http://www.w3.org/2001/XMLSchema#string" {
		t.Errorf("datatypes = %v", ind.Datatypes)
	}
}

func TestDoctypeEntities_Chained(t *testing.T) {
	got := doctypeEntities(xml.Directive(`DOCTYPE rdf:RDF [
		<!ENTITY base 'http://example.org/geo' >
		<!ENTITY geo "&base;#">
		<!ENTITY % param "ignored">
	]`))
	want := map[string]string{
		"base": "http://example.org/geo",
		"geo":  "http://example.org/geo#",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entities (-want +got):\n%s", diff)
	}
}

func TestNilOntologyQueries(t *testing.T) {
	var o *Ontology
	if o.IsLoaded() {
		t.Error("nil ontology loaded")
	}
	if len(o.Students()) != 0 || len(o.ShapesWithFormulas()) != 0 || len(o.ProgressRecords()) != 0 {
		t.Error("nil ontology should return empty lists")
	}
	if o.AITutor() != nil {
		t.Error("nil ontology should have no tutor")
	}
	if o.Stats() != (Stats{}) {
		t.Error("nil ontology stats should be zero")
	}
}

func TestClassesByCategory(t *testing.T) {
	o := loadFixture(t)
	user := o.ClassesByCategory(CategoryUser)
	var names []string
	for _, c := range user {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"User", "Student", "Tutor", "AITutor"}, names); diff != "" {
		t.Errorf("user classes (-want +got):\n%s", diff)
	}
	if got := o.ClassesByCategory("nonsense"); len(got) != 0 {
		t.Errorf("unknown category = %v", got)
	}
}

func TestStudentsAndFind(t *testing.T) {
	o := loadFixture(t)
	students := o.Students()
	if len(students) != 1 {
		t.Fatalf("students = %d", len(students))
	}
	wantDetails := map[string]string{
		"full_name": "John Smith",
		"account":   "JohnAccount",
		"tutor":     "TutorFATIM",
	}
	if diff := cmp.Diff(wantDetails, students[0].Details); diff != "" {
		t.Errorf("details (-want +got):\n%s", diff)
	}

	if s, ok := o.FindStudent("JOHN"); !ok || s.Name != "John - Registered Student" {
		t.Errorf("FindStudent(JOHN) = %+v, %v", s, ok)
	}
	if _, ok := o.FindStudent("zoe"); ok {
		t.Error("FindStudent(zoe) should miss")
	}
}

func TestShapesWithFormulas(t *testing.T) {
	o := loadFixture(t)
	shapes := o.ShapesWithFormulas()
	if len(shapes) != 2 {
		t.Fatalf("shapes = %d, want 2", len(shapes))
	}
	cube := shapes[0]
	if cube.Category != "3D" || cube.Name != "Cube" {
		t.Errorf("cube = %+v", cube)
	}
	want := []Formula{
		{Type: "SurfaceArea", Expression: "SA = 6a²", Source: "ontology"},
		{Type: "Volume", Expression: "V = a³", Source: "ontology"},
	}
	if diff := cmp.Diff(want, cube.Formulas); diff != "" {
		t.Errorf("formulas (-want +got):\n%s", diff)
	}
	if len(shapes[1].Formulas) != 0 {
		t.Errorf("sphere formulas = %v", shapes[1].Formulas)
	}
}

func TestShapesFromClassesWhenNoIndividuals(t *testing.T) {
	o := Sample()
	shapes := o.ShapesWithFormulas()
	if len(shapes) != 6 {
		t.Fatalf("shapes = %d, want 6", len(shapes))
	}
	for _, s := range shapes {
		if !s.FromClass {
			t.Errorf("%s: FromClass = false", s.Name)
		}
	}
	if shapes[4].Name != "Triangle" || shapes[4].Category != "2D" {
		t.Errorf("shape[4] = %+v", shapes[4])
	}
}

func TestProgressRecords(t *testing.T) {
	o := loadFixture(t)
	p, ok := o.FindProgress("student_001")
	if !ok {
		t.Fatal("progress for student_001 not found")
	}
	want := map[string]string{
		"quiz_score":            "70",
		"practice_score":        "60",
		"completion_percentage": "45.5",
	}
	if diff := cmp.Diff(want, p.Metrics); diff != "" {
		t.Errorf("metrics (-want +got):\n%s", diff)
	}
	if _, ok := o.FindProgress(""); ok {
		t.Error("empty user id should not match")
	}
}

func TestPassthroughRecords(t *testing.T) {
	o := loadFixture(t)
	if acts := o.LearningActivities(); len(acts) != 1 || acts[0].Name != "Volumes of solids" {
		t.Errorf("activities = %+v", acts)
	}
	if sessions := o.TutoringSessions(); len(sessions) != 1 || sessions[0].Name != "TutoringSession" {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestAITutor_FromIndividual(t *testing.T) {
	o := loadFixture(t)
	tutor := o.AITutor()
	if tutor == nil {
		t.Fatal("nil tutor")
	}
	if tutor.Name != "FATIM" || tutor.Specialization != "Solid Geometry" || tutor.Inferred {
		t.Errorf("tutor = %+v", tutor)
	}
}

func TestAITutor_Inferred(t *testing.T) {
	o := Sample()
	tutor := o.AITutor()
	if tutor == nil || !tutor.Inferred {
		t.Fatalf("tutor = %+v, want inferred", tutor)
	}
	if tutor.Name != "FATIM AI Tutor" || tutor.Specialization != "Geometric Shapes and Formulas" {
		t.Errorf("tutor = %+v", tutor)
	}
}

func TestAITutor_DocumentOrderWins(t *testing.T) {
	o := Sample()
	o.Individuals = append(o.Individuals,
		Individual{URI: "#Helper", Type: "Assistant", Label: "Homework Tutor"},
		Individual{URI: "#Bot", Type: "AITutor", Label: "Bot"},
	)
	if got := o.AITutor().Name; got != "Homework Tutor" {
		t.Errorf("tutor = %q, want the first matching individual", got)
	}
}

func TestStats(t *testing.T) {
	o := loadFixture(t)
	want := Stats{
		TotalClasses:     10,
		TotalIndividuals: 9,
		UserClasses:      4,
		GeometryClasses:  3,
		LearningClasses:  1,
		Students:         1,
		Tutors:           1,
		Shapes:           2,
		Sessions:         1,
		ProgressRecords:  1,
	}
	if diff := cmp.Diff(want, o.Stats()); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}
