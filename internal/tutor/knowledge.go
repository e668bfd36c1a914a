package tutor

// Knowledge base topics. A 3D shape has volume and surface area; a 2D shape
// has area and perimeter. Every shape has a description.
const (
	TopicVolume      = "volume"
	TopicSurfaceArea = "surface_area"
	TopicArea        = "area"
	TopicPerimeter   = "perimeter"
	TopicDescription = "description"
)

var knowledge = map[string]map[string]string{
	"cube": {
		TopicVolume:      "Volume of a cube = a³ (where 'a' is the side length). Example: If side = 4 cm, volume = 4³ = 64 cm³",
		TopicSurfaceArea: "Surface area of a cube = 6a². This is because a cube has 6 faces, each with area a²",
		TopicDescription: "A cube is a 3D shape with 6 square faces, 12 edges, and 8 vertices. All edges are equal in length.",
	},
	"sphere": {
		TopicVolume:      "Volume of a sphere = 4/3 π r³ (where 'r' is the radius). π is approximately 3.14159",
		TopicSurfaceArea: "Surface area of a sphere = 4πr². This formula gives the total area covering the sphere",
		TopicDescription: "A sphere is a perfectly round 3D shape like a ball. All points on the surface are equidistant from the center.",
	},
	"cone": {
		TopicVolume:      "Volume of a cone = (1/3) π r² h (where 'r' is radius, 'h' is height)",
		TopicSurfaceArea: "Surface area of a cone = πr(r + l) where 'l' is the slant height",
		TopicDescription: "A cone has a circular base and tapers smoothly to a point called the apex.",
	},
	"cylinder": {
		TopicVolume:      "Volume of a cylinder = π r² h (area of circular base × height)",
		TopicSurfaceArea: "Surface area = 2πr(h + r) = area of side + area of both circular ends",
		TopicDescription: "A cylinder has two parallel circular bases connected by a curved surface.",
	},
	"triangle": {
		TopicArea:        "Area of a triangle = 1/2 × base × height",
		TopicPerimeter:   "Perimeter = sum of all three sides",
		TopicDescription: "A triangle is a 3-sided polygon. The sum of interior angles is always 180°.",
	},
	"rectangle": {
		TopicArea:        "Area of a rectangle = length × width",
		TopicPerimeter:   "Perimeter = 2 × (length + width)",
		TopicDescription: "A rectangle has 4 sides with opposite sides equal and all angles 90°.",
	},
}

// general topics in match order.
var general = []struct{ key, text string }{
	{"2d_vs_3d", "2D shapes are flat with only length and width (like triangle, rectangle). 3D shapes have length, width, and height (like cube, sphere)."},
	{"pi", "π (pi) is a mathematical constant approximately equal to 3.14159. It represents the ratio of a circle's circumference to its diameter."},
	{"volume", "Volume measures how much space a 3D shape occupies, measured in cubic units."},
	{"area", "Area measures the space inside a 2D shape, measured in square units."},
}

var greetings = []string{
	"Hello! I'm your geometry tutor. How can I help you today?",
	"Hi there! Ready to learn some geometry?",
	"Welcome! I'm here to help with shapes, formulas, and geometry concepts.",
	"Greetings! Ask me anything about geometric shapes.",
}

const (
	volumeFormulas    = "For volume formulas: Cube = a³, Sphere = 4/3 π r³, Cone = (1/3) π r² h, Cylinder = π r² h"
	surfaceFormulas   = "For surface area: Cube = 6a², Sphere = 4πr², Cylinder = 2πr(h + r)"
	perimeterFormulas = "For perimeter: Rectangle = 2(length + width), Triangle = sum of all sides"
)
