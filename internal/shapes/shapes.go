// Package shapes builds the shape catalogue served to the frontend: six
// built-in shapes, overlaid with whatever the ontology knows.
package shapes

import (
	"strings"

	"github.com/starford/geotutor/internal/ontology"
)

// SourceHardcoded marks catalogue entries that came from the built-in list.
const SourceHardcoded = "hardcoded"

// Shape is one catalogue entry.
type Shape struct {
	Name         string             `json:"name"`
	Type         string             `json:"type"`
	Category     string             `json:"category"`
	Formula      string             `json:"formula"`
	Image        string             `json:"image"`
	URI          string             `json:"uri,omitempty"`
	FromOntology bool               `json:"from_ontology"`
	Source       string             `json:"source,omitempty"`
	Formulas     []ontology.Formula `json:"formulas,omitempty"`
	Properties   map[string]string  `json:"properties,omitempty"`
}

var base = []Shape{
	{Name: "Cube", Formula: "Volume = a³", Image: "cube1.jpg", Type: "Cube", Category: "3D"},
	{Name: "Sphere", Formula: "Volume = 4/3 π r³", Image: "sphere1.png", Type: "Sphere", Category: "3D"},
	{Name: "Cone", Formula: "Volume = (1/3) π r² h", Image: "cone1.png", Type: "Cone", Category: "3D"},
	{Name: "Cylinder", Formula: "Volume = π r² h", Image: "cylinder.jpg", Type: "Cylinder", Category: "3D"},
	{Name: "Triangle", Formula: "Area = 1/2 × base × height", Image: "triangle.png", Type: "Triangle", Category: "2D"},
	{Name: "Rectangle", Formula: "Area = length × width", Image: "rectangle.jpg", Type: "Rectangle", Category: "2D"},
}

// Base returns a copy of the built-in shapes.
func Base() []Shape {
	out := make([]Shape, len(base))
	copy(out, base)
	return out
}

func baseByName(name string) (Shape, bool) {
	for _, b := range base {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Shape{}, false
}

// Catalogue returns the shapes to display and whether the ontology
// contributed to them. o may be nil.
func Catalogue(o *ontology.Ontology) (shapes []Shape, ontologyUsed bool) {
	if !o.IsLoaded() {
		out := Base()
		for i := range out {
			out[i].Source = SourceHardcoded
		}
		return out, false
	}

	for _, src := range o.ShapesWithFormulas() {
		s := Shape{
			Name:         orDefault(src.Name, "Unknown"),
			Type:         orDefault(src.Type, "Shape"),
			Category:     orDefault(src.Category, "3D"),
			URI:          src.URI,
			FromOntology: true,
			Formulas:     src.Formulas,
			Properties:   src.Properties,
		}
		b, hasBase := baseByName(s.Name)
		switch {
		case len(src.Formulas) > 0:
			s.Formula = orDefault(src.Formulas[0].Expression, "See formulas")
		case hasBase:
			s.Formula = b.Formula
		default:
			s.Formula = "Formula available"
		}
		if hasBase {
			s.Image = b.Image
		}
		shapes = append(shapes, s)
	}
	if len(shapes) > 0 {
		return shapes, true
	}

	shapes = Base()
	for i := range shapes {
		shapes[i].Source = SourceHardcoded
		if c := o.Class(shapes[i].Type); c != nil {
			shapes[i].URI = c.URI
			shapes[i].FromOntology = true
			ontologyUsed = true
		}
	}
	return shapes, ontologyUsed
}

// Formulas returns the built-in formula for each shape, keyed by name.
func Formulas() map[string]string {
	out := make(map[string]string, len(base))
	for _, b := range base {
		out[b.Name] = b.Formula
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
