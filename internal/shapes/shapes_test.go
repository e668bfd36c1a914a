package shapes

import (
	"testing"

	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/testutil"
)

func TestCatalogue_NoOntology(t *testing.T) {
	got, used := Catalogue(nil)
	if used {
		t.Error("ontology_used should be false")
	}
	if len(got) != 6 {
		t.Fatalf("shapes = %d, want 6", len(got))
	}
	for _, s := range got {
		if s.Source != SourceHardcoded || s.FromOntology {
			t.Errorf("%s: source=%q from_ontology=%v", s.Name, s.Source, s.FromOntology)
		}
	}
	if got[4].Name != "Triangle" || got[4].Category != "2D" || got[4].Image != "triangle.png" {
		t.Errorf("triangle = %+v", got[4])
	}
}

func TestCatalogue_OntologyIndividuals(t *testing.T) {
	got, used := Catalogue(testutil.FixtureOntology(t))
	if !used {
		t.Error("ontology_used should be true")
	}
	if len(got) != 2 {
		t.Fatalf("shapes = %d, want 2", len(got))
	}
	cube, sphere := got[0], got[1]
	if cube.Formula != "SA = 6a²" || len(cube.Formulas) != 2 || cube.Image != "cube1.jpg" {
		t.Errorf("cube = %+v", cube)
	}
	if sphere.Formula != "Volume = 4/3 π r³" || sphere.Image != "sphere1.png" {
		t.Errorf("sphere = %+v", sphere)
	}
	if !sphere.FromOntology || sphere.URI == "" {
		t.Errorf("sphere provenance = %+v", sphere)
	}
}

func TestCatalogue_ClassFallback(t *testing.T) {
	got, used := Catalogue(ontology.Sample())
	if !used || len(got) != 6 {
		t.Fatalf("used=%v shapes=%d", used, len(got))
	}
	if got[0].Formula != "Volume = a³" || got[0].URI != "#Cube" {
		t.Errorf("cube = %+v", got[0])
	}
}

func TestCatalogue_LoadedWithoutShapes(t *testing.T) {
	o, err := ontology.Parse([]byte(`<rdf:RDF xmlns:owl="http://www.w3.org/2002/07/owl#"
		xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
		<owl:Class rdf:about="#Student"/>
	</rdf:RDF>`))
	if err != nil {
		t.Fatal(err)
	}
	got, used := Catalogue(o)
	if used {
		t.Error("ontology without shapes should not be used")
	}
	for _, s := range got {
		if s.Source != SourceHardcoded || s.FromOntology || s.URI != "" {
			t.Errorf("%s = %+v", s.Name, s)
		}
	}
}

func TestBaseIsACopy(t *testing.T) {
	b := Base()
	b[0].Name = "Mutated"
	if Base()[0].Name != "Cube" {
		t.Error("Base must return a copy")
	}
	if Formulas()["Cone"] != "Volume = (1/3) π r² h" {
		t.Errorf("formulas = %v", Formulas())
	}
}
