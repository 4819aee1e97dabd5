package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/blockflow"
	"github.com/aretw0/blockflow/internal/dto"
	"github.com/aretw0/blockflow/internal/logging"
	"github.com/aretw0/blockflow/internal/validator"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/graph"
	"github.com/aretw0/blockflow/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// WorkflowsURI lists the saved workflow ids.
const WorkflowsURI = "blockflow://workflows"

// DocumentArgs are the arguments shared by the document tools.
type DocumentArgs struct {
	Document string `json:"document"`
	Format   string `json:"format,omitempty"`
	NodeID   string `json:"node_id,omitempty"`
}

// ValidationResponse aligns with the HTTP adapter's /validate body.
type ValidationResponse struct {
	Valid         bool            `json:"valid" jsonschema_description:"Whether the workflow passes the save gate"`
	Phase         validator.Phase `json:"phase"`
	CompletePaths []graph.Path    `json:"complete_paths" jsonschema_description:"Start-to-end paths through the workflow"`
	Error         *ErrorDetail    `json:"error,omitempty" jsonschema_description:"First failure found, if any"`
	Deletable     map[string]bool `json:"deletable" jsonschema_description:"Deletable flag per node id"`
}

// ErrorDetail describes a save gate failure.
type ErrorDetail struct {
	Message  string `json:"message"`
	Category string `json:"category"`
	NodeID   string `json:"node_id,omitempty"`
}

// LintResponse lists every issue in a document.
type LintResponse struct {
	Issues    []validator.Issue `json:"issues"`
	HasErrors bool              `json:"has_errors"`
}

// FieldsResponse lists the form fields visible from a node.
type FieldsResponse struct {
	NodeID string             `json:"node_id"`
	Fields []domain.FormField `json:"fields"`
}

// DeletableResponse maps every node id to its deletable flag.
type DeletableResponse struct {
	Deletable map[string]bool `json:"deletable"`
}

// Engine defines what the MCP server needs from the blockflow core.
type Engine interface {
	Sessions() *session.Manager
	Validate(doc *domain.Document) validator.Result
	Lint(doc *domain.Document) []validator.Issue
	Deletable(doc *domain.Document) map[string]bool
	AvailableFields(doc *domain.Document, nodeID string) ([]domain.FormField, error)
}

var _ Engine = (*blockflow.Engine)(nil)

// Server exposes the blockflow engine as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger. It must not write to Stdout when
// serving over stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("blockflow-mcp", strings.TrimSpace(blockflow.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	documentArg := mcp.WithString("document", mcp.Required(), mcp.Description("Workflow document with nodes and edges"))
	formatArg := mcp.WithString("format", mcp.Description("Encoding of document: json (default) or yaml"), mcp.Enum("json", "yaml"))

	// TOOL: validate_workflow
	validateTool := mcp.NewTool("validate_workflow",
		mcp.WithDescription("Run the save checks on a workflow and report the first failure, the complete start-to-end paths and which blocks may be deleted."),
		documentArg,
		formatArg,
		mcp.WithOutputSchema[ValidationResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: lint_workflow
	lintTool := mcp.NewTool("lint_workflow",
		mcp.WithDescription("List every structural and configuration issue in a workflow."),
		documentArg,
		formatArg,
		mcp.WithOutputSchema[LintResponse](),
	)
	s.mcpServer.AddTool(lintTool, mcp.NewStructuredToolHandler(s.handleLint))

	// TOOL: available_fields
	fieldsTool := mcp.NewTool("available_fields",
		mcp.WithDescription("List the form fields declared upstream of a block, as offered to an API block's request body."),
		documentArg,
		formatArg,
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Block to resolve fields for")),
		mcp.WithOutputSchema[FieldsResponse](),
	)
	s.mcpServer.AddTool(fieldsTool, mcp.NewStructuredToolHandler(s.handleFields))

	// TOOL: deletable_nodes
	deletableTool := mcp.NewTool("deletable_nodes",
		mcp.WithDescription("Report which blocks may be deleted. Start and End blocks anchoring a complete path are protected."),
		documentArg,
		formatArg,
		mcp.WithOutputSchema[DeletableResponse](),
	)
	s.mcpServer.AddTool(deletableTool, mcp.NewStructuredToolHandler(s.handleDeletable))

	// TOOL: get_workflow
	s.mcpServer.AddTool(mcp.NewTool("get_workflow",
		mcp.WithDescription("Fetch a saved workflow document by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Workflow id")),
	), s.handleGetWorkflow)
}

func (s *Server) decode(args DocumentArgs) (*domain.Document, error) {
	if strings.TrimSpace(args.Document) == "" {
		return nil, fmt.Errorf("document is required")
	}
	format := dto.FormatJSON
	if strings.EqualFold(args.Format, string(dto.FormatYAML)) {
		format = dto.FormatYAML
	}
	return dto.Decode([]byte(args.Document), format)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (ValidationResponse, error) {
	doc, err := s.decode(args)
	if err != nil {
		return ValidationResponse{}, err
	}

	res := s.engine.Validate(doc)
	resp := ValidationResponse{
		Valid:         res.OK(),
		Phase:         res.Phase,
		CompletePaths: res.CompletePaths,
		Deletable:     s.engine.Deletable(doc),
	}
	if resp.CompletePaths == nil {
		resp.CompletePaths = []graph.Path{}
	}
	if res.Err != nil {
		resp.Error = &ErrorDetail{Message: res.Err.Message, Category: string(res.Err.Category), NodeID: res.Err.NodeID}
	}
	s.logger.Debug("workflow validated", "valid", resp.Valid, "nodes", len(doc.Nodes))
	return resp, nil
}

func (s *Server) handleLint(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (LintResponse, error) {
	doc, err := s.decode(args)
	if err != nil {
		return LintResponse{}, err
	}
	issues := s.engine.Lint(doc)
	if issues == nil {
		issues = []validator.Issue{}
	}
	return LintResponse{Issues: issues, HasErrors: validator.HasErrors(issues)}, nil
}

func (s *Server) handleFields(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (FieldsResponse, error) {
	doc, err := s.decode(args)
	if err != nil {
		return FieldsResponse{}, err
	}
	fields, err := s.engine.AvailableFields(doc, args.NodeID)
	if err != nil {
		return FieldsResponse{}, err
	}
	if fields == nil {
		fields = []domain.FormField{}
	}
	return FieldsResponse{NodeID: args.NodeID, Fields: fields}, nil
}

func (s *Server) handleDeletable(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (DeletableResponse, error) {
	doc, err := s.decode(args)
	if err != nil {
		return DeletableResponse{}, err
	}
	return DeletableResponse{Deletable: s.engine.Deletable(doc)}, nil
}

func (s *Server) handleGetWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.engine.Sessions().Store().Load(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(WorkflowsURI, "Saved Workflows",
		mcp.WithMIMEType("application/json"),
	), s.readWorkflows)
}

func (s *Server) readWorkflows(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.engine.Sessions().Saved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, _ := json.Marshal(map[string][]string{"workflows": ids})

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      WorkflowsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
