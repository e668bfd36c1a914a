// Package tutor answers chat messages with canned geometry facts and grades
// quiz and practice submissions.
package tutor

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/starford/geotutor/internal/models"
	"github.com/starford/geotutor/internal/ontology"
)

// Identity is the tutor's public name.
type Identity struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	FromOntology   bool   `json:"from_ontology"`
}

// Tutor is safe for concurrent use.
type Tutor struct {
	onto ontology.Source
	intn func(n int) int
}

// New creates a tutor. onto may be nil, in which case the default identity
// is used.
func New(onto ontology.Source) *Tutor {
	return &Tutor{onto: onto, intn: rand.IntN}
}

// Identity reads the tutor from the current ontology.
func (t *Tutor) Identity() Identity {
	id := Identity{Name: "AI Tutor", Specialization: "Geometry"}
	if t.onto == nil {
		return id
	}
	if at := t.onto.Current().AITutor(); at != nil {
		id.Name = at.Name
		id.Specialization = at.Specialization
		id.FromOntology = true
	}
	return id
}

func (t *Tutor) pick(list []string) string {
	return list[t.intn(len(list))]
}

type reply struct {
	key  string
	text func(id Identity) string
}

func fixed(s string) func(Identity) string {
	return func(Identity) string { return s }
}

// replies is matched first exactly, then as substrings, in this order.
var replies = []reply{
	{"hello", func(id Identity) string {
		return fmt.Sprintf("Hello! I'm %s, your %s tutor. How can I help?", id.Name, id.Specialization)
	}},
	{"cube", fixed("A cube has 6 faces. Volume = a³, Surface Area = 6a²")},
	{"sphere", fixed("A sphere is round. Volume = 4/3 π r³, Surface Area = 4πr²")},
	{"cone", fixed("A cone has a circular base. Volume = (1/3) π r² h")},
	{"cylinder", fixed("A cylinder has two circular bases. Volume = π r² h")},
	{"triangle", fixed("A triangle has 3 sides. Area = 1/2 × base × height")},
	{"rectangle", fixed("A rectangle has 4 sides. Area = length × width")},
	{"hi", func(id Identity) string {
		return fmt.Sprintf("Hi! I'm %s, here to help with geometry!", id.Name)
	}},
	{"help", func(id Identity) string {
		return fmt.Sprintf("I'm %s, specializing in %s. I can help with: cubes, spheres, cones, cylinders, triangles, rectangles.", id.Name, id.Specialization)
	}},
	{"formula", fixed("I can provide formulas for volume, surface area, and area of geometric shapes.")},
	{"shapes", fixed("I know about: Cube, Sphere, Cone, Cylinder, Triangle, Rectangle.")},
	{"progress", fixed("I can help you track your learning progress and suggest areas to improve.")},
	{"quiz", fixed("Ready for a quiz? I can test your knowledge of geometric shapes and formulas.")},
	{"practice", fixed("Let's practice some geometry problems together!")},
}

// Respond answers a free-text message.
func (t *Tutor) Respond(message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))
	id := t.Identity()

	for _, r := range replies {
		if r.key == msg {
			return r.text(id)
		}
	}
	for _, r := range replies {
		if strings.Contains(msg, r.key) {
			return r.text(id)
		}
	}
	for _, g := range general {
		if strings.Contains(msg, g.key) {
			return g.text
		}
	}
	if answer, ok := formulaQuestion(msg); ok {
		return answer
	}
	return fmt.Sprintf("I'm %s, your geometry tutor. I can help with shapes, formulas, quizzes, and practice exercises. What would you like to know?", id.Name)
}

func formulaQuestion(msg string) (string, bool) {
	asks := false
	for _, w := range []string{"formula", "calculate", "compute", "find"} {
		if strings.Contains(msg, w) {
			asks = true
			break
		}
	}
	if !asks {
		return "", false
	}
	switch {
	case strings.Contains(msg, "volume"):
		return volumeFormulas, true
	case strings.Contains(msg, "surface"), strings.Contains(msg, "area"):
		return surfaceFormulas, true
	case strings.Contains(msg, "perimeter"):
		return perimeterFormulas, true
	}
	return "", false
}

// Greeting returns one of the canned greetings.
func (t *Tutor) Greeting() string {
	return t.pick(greetings)
}

// Explain looks up a knowledge base entry. shape is case-insensitive; an
// empty topic means the description.
func (t *Tutor) Explain(shape, topic string) (string, bool) {
	entry, ok := knowledge[strings.ToLower(strings.TrimSpace(shape))]
	if !ok {
		return "", false
	}
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		topic = TopicDescription
	}
	text, ok := entry[strings.ReplaceAll(topic, " ", "_")]
	return text, ok
}

// Topics returns the knowledge base topics available for shape.
func Topics(shape string) []string {
	entry := knowledge[strings.ToLower(shape)]
	var out []string
	for _, topic := range []string{TopicVolume, TopicSurfaceArea, TopicArea, TopicPerimeter, TopicDescription} {
		if _, ok := entry[topic]; ok {
			out = append(out, topic)
		}
	}
	return out
}

func percentage(score float64, total int) float64 {
	if total <= 0 {
		total = 1
	}
	return score / float64(total) * 100
}

// QuizFeedback grades a quiz score out of total.
func (t *Tutor) QuizFeedback(score float64, total int) string {
	switch pct := percentage(score, total); {
	case pct >= 90:
		return "Excellent work! You have a strong understanding of geometric shapes and formulas."
	case pct >= 70:
		return "Good job! You understand most concepts well. Keep practicing!"
	case pct >= 50:
		return "Not bad! You're getting there. Review the shapes section and try the practice exercises."
	default:
		return "Let's review the basics together. Check out the shapes section and don't hesitate to ask me questions!"
	}
}

// practiceAreas names the skill each of the five standard exercises tests.
var practiceAreas = []string{"cube volume", "sphere surface area", "triangle area", "cylinder volume", "rectangle perimeter"}

// PracticeFeedback grades a practice round. Below 60% the weak areas are
// named when the round holds the five standard exercises.
func (t *Tutor) PracticeFeedback(correct, total int, exercises []models.ExerciseResult) string {
	switch pct := percentage(float64(correct), total); {
	case pct >= 100:
		return "Perfect score! You've mastered these exercises. Ready for more challenging problems?"
	case pct >= 80:
		return "Great work! You understand these concepts well."
	case pct >= 60:
		return "Good effort! You're on the right track. Review any mistakes and try again."
	}

	var weak []string
	if len(exercises) >= len(practiceAreas) {
		for i, area := range practiceAreas {
			if c := exercises[i].Correct; c != nil && !*c {
				weak = append(weak, area)
			}
		}
	}
	if len(weak) > 0 {
		return fmt.Sprintf("Let's focus on: %s. Review these formulas and try again!", strings.Join(weak, ", "))
	}
	return "Keep practicing! Each attempt helps you learn. Don't hesitate to ask me for help with specific formulas."
}
