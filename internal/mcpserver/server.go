// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the geometry tutor to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/geotutor/internal/activity"
	"github.com/starford/geotutor/internal/auth"
	"github.com/starford/geotutor/internal/ontology"
	"github.com/starford/geotutor/internal/progress"
	"github.com/starford/geotutor/internal/shapes"
	"github.com/starford/geotutor/internal/tutor"
)

// FormulasURI is the resource listing the built-in formulas.
const FormulasURI = "geotutor://formulas"

// Deps are the services exposed as tools. Activity may be nil.
type Deps struct {
	Auth     *auth.Service
	Progress *progress.Service
	Tutor    *tutor.Tutor
	Ontology ontology.Source
	Activity activity.Store
}

// Server wraps the MCP server with tutor tools.
type Server struct {
	mcp *server.MCPServer
	d   Deps
}

// New creates a new MCP server with all tutor tools registered.
func New(d Deps) *Server {
	s := &Server{d: d}

	s.mcp = server.NewMCPServer(
		"GeoTutor",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("ask_tutor",
		mcp.WithDescription("Ask the geometry tutor a question and get its reply."),
		mcp.WithString("message", mcp.Required(), mcp.Description("Question or message for the tutor")),
		mcp.WithString("user_id", mcp.Description("Optional user id the exchange is logged under")),
	), s.askTutor)

	s.mcp.AddTool(mcp.NewTool("explain_topic",
		mcp.WithDescription("Explain a topic (volume, surface_area, area, perimeter, description) for a shape."),
		mcp.WithString("shape", mcp.Required(), mcp.Description("Shape name, e.g. cube or sphere")),
		mcp.WithString("topic", mcp.Description("Topic; defaults to description")),
	), s.explainTopic)

	s.mcp.AddTool(mcp.NewTool("list_shapes",
		mcp.WithDescription("List the shapes the tutor knows, with formulas and images."),
	), s.listShapes)

	s.mcp.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Get quiz, practice and overall progress for a user."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id, e.g. student_001")),
	), s.getProgress)

	s.mcp.AddTool(mcp.NewTool("list_students",
		mcp.WithDescription("List registered students and students defined in the ontology."),
	), s.listStudents)

	s.mcp.AddTool(mcp.NewTool("ontology_stats",
		mcp.WithDescription("Summarise the loaded ontology: class and individual counts."),
	), s.ontologyStats)

	s.mcp.AddTool(mcp.NewTool("ontology_classes",
		mcp.WithDescription("List ontology classes, optionally only one category (user, authentication, learning, geometry, progress)."),
		mcp.WithString("category", mcp.Description("Optional category filter")),
	), s.ontologyClasses)

	s.mcp.AddTool(mcp.NewTool("search_activity",
		mcp.WithDescription("Full-text search through logged chats, quizzes and practice sessions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchActivity)

	s.mcp.AddResource(
		mcp.NewResource(FormulasURI, "Geometry Formulas",
			mcp.WithResourceDescription("Volume and surface area formulas for the built-in shapes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormulasResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) askTutor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return mcp.NewToolResultError("message is empty"), nil
	}
	answer := s.d.Tutor.Respond(message)
	if userID := req.GetString("user_id", ""); userID != "" && s.d.Activity != nil {
		if err := s.d.Activity.Record(ctx, userID, activity.KindChat, message, map[string]string{"response": answer}); err != nil {
			slog.Warn("activity record failed",
				slog.String("user_id", userID),
				slog.String("kind", activity.KindChat),
				slog.String("error", err.Error()))
		}
	}
	return mcp.NewToolResultText(answer), nil
}

func (s *Server) explainTopic(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	shape, err := req.RequireString("shape")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	shape = strings.ToLower(strings.TrimSpace(shape))
	topic := strings.ToLower(strings.TrimSpace(req.GetString("topic", "")))
	text, ok := s.d.Tutor.Explain(shape, topic)
	if !ok {
		known := tutor.Topics(shape)
		if len(known) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("unknown shape: %s", shape)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("unknown topic %q for %s, try: %s", topic, shape, strings.Join(known, ", "))), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) listShapes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, _ := shapes.Catalogue(s.d.Ontology.Current())
	return jsonResult(list)
}

func (s *Server) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := req.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.d.Progress.Get(ctx, userID))
}

func (s *Server) listStudents(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := s.d.Auth.Directory(ctx)
	return jsonResult(map[string]any{
		"registered": dir.Students,
		"ontology":   s.d.Ontology.Current().Students(),
	})
}

func (s *Server) ontologyStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	o := s.d.Ontology.Current()
	if !o.IsLoaded() {
		return mcp.NewToolResultError("ontology not loaded"), nil
	}
	return jsonResult(o.Stats())
}

func (s *Server) ontologyClasses(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	o := s.d.Ontology.Current()
	if !o.IsLoaded() {
		return mcp.NewToolResultError("ontology not loaded"), nil
	}
	if category := strings.ToLower(strings.TrimSpace(req.GetString("category", ""))); category != "" {
		return jsonResult(o.ClassesByCategory(category))
	}
	byCategory := make(map[string][]ontology.Class)
	for _, c := range ontology.Categories() {
		byCategory[c] = o.ClassesByCategory(c)
	}
	return jsonResult(byCategory)
}

func (s *Server) searchActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.d.Activity == nil {
		return mcp.NewToolResultError("activity log disabled"), nil
	}
	entries, err := s.d.Activity.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no activity found"), nil
	}
	return jsonResult(entries)
}

func formulasMarkdown() string {
	formulas := shapes.Formulas()
	names := make([]string, 0, len(formulas))
	for name := range formulas {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# Geometry Formulas\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- **%s**: %s\n", name, formulas[name])
	}
	return b.String()
}

func (s *Server) readFormulasResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormulasURI,
			MIMEType: "text/markdown",
			Text:     formulasMarkdown(),
		},
	}, nil
}
