package ontology

// Sample returns the built-in ontology used when no file is present: ten
// user and shape classes and two registered students.
func Sample() *Ontology {
	o := newOntology("")
	for _, c := range []struct{ name, label string }{
		{"Student", "Student"},
		{"GuestUser", "Guest User"},
		{"Tutor", "Tutor"},
		{"AITutor", "AI Tutor"},
		{"Cube", "Cube"},
		{"Sphere", "Sphere"},
		{"Cone", "Cone"},
		{"Cylinder", "Cylinder"},
		{"Triangle", "Triangle"},
		{"Rectangle", "Rectangle"},
	} {
		o.Classes[c.name] = &Class{Name: c.name, URI: "#" + c.name, Label: c.label, Type: "class"}
	}

	o.Individuals = []Individual{
		{
			URI:        "#StudentJohn",
			Type:       "Student",
			Label:      "John - Registered Student",
			Properties: map[string]string{"studentName": "John", "hasAccount": "JohnAccount"},
		},
		{
			URI:        "#StudentSarah",
			Type:       "Student",
			Label:      "Sarah - Registered Student",
			Properties: map[string]string{"studentName": "Sarah", "hasAccount": "SarahAccount"},
		},
	}
	o.Loaded = true
	return o
}
