package http

import (
	"context"
	"encoding/json"
	"errors"
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
	"github.com/aretw0/blockflow/pkg/observability"
	"github.com/aretw0/blockflow/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines what the HTTP adapter needs from the blockflow core.
type Engine interface {
	Sessions() *session.Manager
	Validate(doc *domain.Document) validator.Result
	Lint(doc *domain.Document) []validator.Issue
	Deletable(doc *domain.Document) map[string]bool
}

var _ Engine = (*blockflow.Engine)(nil)

// Server holds the handlers for the blockflow HTTP API.
type Server struct {
	Engine   Engine
	spec     *openapi3.T
	schemas  schemaValidator
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics records request metrics in m and serves gatherer on /metrics.
// Pass the same Metrics used for the engine's lifecycle hooks to expose both.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:  engine,
		spec:    spec,
		schemas: schemaValidator{spec: spec},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		m, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		s.metrics, s.gatherer = m, reg
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Post("/validate", s.PostValidate)
	r.Post("/lint", s.PostLint)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.CloseSession)
			r.Post("/nodes", s.AddNode)
			r.Delete("/nodes/{nodeID}", s.RemoveNode)
			r.Put("/nodes/{nodeID}/position", s.MoveNode)
			r.Put("/nodes/{nodeID}/form", s.ConfigureForm)
			r.Put("/nodes/{nodeID}/api", s.ConfigureAPI)
			r.Get("/nodes/{nodeID}/fields", s.GetFields)
			r.Post("/nodes/{nodeID}/request-body/{fieldID}", s.ToggleRequestField)
			r.Post("/edges", s.Connect)
			r.Delete("/edges/{edgeID}", s.RemoveEdge)
			r.Delete("/errors", s.ClearErrors)
			r.Post("/save", s.Save)
		})
	})

	return r, nil
}

// instrument records latency and status per route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveRequest(r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>blockflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "blockflow-http",
		"version":     strings.TrimSpace(blockflow.Version),
		"api_version": apiVersion,
	})
}

// GetSpec serves the embedded OpenAPI document.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(rawSpec)
}

// ValidationResponse is the body of POST /validate.
type ValidationResponse struct {
	Valid         bool            `json:"valid"`
	Phase         validator.Phase `json:"phase"`
	CompletePaths []graph.Path    `json:"complete_paths"`
	Error         *ErrorResponse  `json:"error,omitempty"`
	Deletable     map[string]bool `json:"deletable"`
}

// PostValidate handles the POST /validate request.
func (s *Server) PostValidate(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}

	res := s.Engine.Validate(doc)
	resp := ValidationResponse{
		Valid:         res.OK(),
		Phase:         res.Phase,
		CompletePaths: res.CompletePaths,
		Deletable:     s.Engine.Deletable(doc),
	}
	if resp.CompletePaths == nil {
		resp.CompletePaths = []graph.Path{}
	}
	if res.Err != nil {
		resp.Error = validationError(res.Err)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PostLint handles the POST /lint request.
func (s *Server) PostLint(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeDocument(w, r)
	if !ok {
		return
	}
	issues := s.Engine.Lint(doc)
	if issues == nil {
		issues = []validator.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issues":     issues,
		"has_errors": validator.HasErrors(issues),
	})
}

// decodeDocument reads a document body, checks it against the Document
// schema, and converts it. It writes the 400 response itself on failure.
func (s *Server) decodeDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, &ErrorResponse{Error: "Invalid request body"})
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return nil, false
	}
	if err := s.schemas.validate("Document", body); err != nil {
		writeError(w, http.StatusBadRequest, &ErrorResponse{Error: fmt.Sprintf("Document does not match schema: %v", err)})
		return nil, false
	}

	raw, _ := json.Marshal(body)
	doc, err := dto.Decode(raw, dto.FormatJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return doc, true
}

// SessionResponse is the canvas snapshot of one session.
type SessionResponse struct {
	ID     string          `json:"id"`
	Nodes  []domain.Node   `json:"nodes"`
	Edges  []domain.Edge   `json:"edges"`
	Errors []string        `json:"errors"`
	Phase  validator.Phase `json:"phase"`
}

func sessionView(ed *session.Editor) SessionResponse {
	g := ed.Snapshot()
	resp := SessionResponse{
		ID:     ed.ID(),
		Nodes:  g.Nodes,
		Edges:  g.Edges,
		Errors: ed.Errors(),
		Phase:  ed.Phase(),
	}
	if resp.Nodes == nil {
		resp.Nodes = []domain.Node{}
	}
	if resp.Edges == nil {
		resp.Edges = []domain.Edge{}
	}
	return resp
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Engine.Sessions().List()})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.Engine.Sessions().Create(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("session created", "session_id", id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GetSession handles the GET /sessions/{id} request. A saved workflow that is
// not open yet is restored; ids that are neither open nor saved get 404.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	var view SessionResponse
	err := s.Engine.Sessions().WithExistingEditor(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, ed *session.Editor) error {
		view = sessionView(ed)
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CloseSession handles the DELETE /sessions/{id} request.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Sessions().Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddNodeRequest is the body of POST /sessions/{id}/nodes.
type AddNodeRequest struct {
	Type     domain.NodeType `json:"type"`
	Position domain.Position `json:"position"`
}

// AddNode handles the POST /sessions/{id}/nodes request.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body AddNodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		n, err := ed.AddBlock(body.Type, body.Position)
		return http.StatusCreated, n, err
	})
}

// RemoveNode handles the DELETE /sessions/{id}/nodes/{nodeID} request.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		return http.StatusNoContent, nil, ed.RemoveNode(chi.URLParam(r, "nodeID"))
	})
}

// MoveNode handles the PUT /sessions/{id}/nodes/{nodeID}/position request.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos domain.Position
	if !s.decode(w, r, &pos) {
		return
	}
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		return http.StatusNoContent, nil, ed.MoveNode(chi.URLParam(r, "nodeID"), pos)
	})
}

// FormRequest is the body of PUT /sessions/{id}/nodes/{nodeID}/form.
type FormRequest struct {
	CustomName string             `json:"customName"`
	Fields     []domain.FormField `json:"fields"`
}

// ConfigureForm handles the PUT /sessions/{id}/nodes/{nodeID}/form request.
func (s *Server) ConfigureForm(w http.ResponseWriter, r *http.Request) {
	var body FormRequest
	if !s.decode(w, r, &body) {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		if err := ed.ConfigureForm(nodeID, body.CustomName, body.Fields); err != nil {
			return 0, nil, err
		}
		n, _ := ed.Snapshot().Node(nodeID)
		return http.StatusOK, n, nil
	})
}

// APIRequest is the body of PUT /sessions/{id}/nodes/{nodeID}/api.
type APIRequest struct {
	CustomName string `json:"customName"`
	HTTPMethod string `json:"httpMethod"`
	URL        string `json:"url"`
}

// ConfigureAPI handles the PUT /sessions/{id}/nodes/{nodeID}/api request.
func (s *Server) ConfigureAPI(w http.ResponseWriter, r *http.Request) {
	var body APIRequest
	if !s.decode(w, r, &body) {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		if err := ed.ConfigureAPI(nodeID, body.CustomName, body.HTTPMethod, body.URL); err != nil {
			return 0, nil, err
		}
		n, _ := ed.Snapshot().Node(nodeID)
		return http.StatusOK, n, nil
	})
}

// GetFields handles the GET /sessions/{id}/nodes/{nodeID}/fields request.
func (s *Server) GetFields(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		fields, err := ed.AvailableFields(chi.URLParam(r, "nodeID"))
		if fields == nil {
			fields = []domain.FormField{}
		}
		return http.StatusOK, map[string]any{"fields": fields}, err
	})
}

// ToggleRequestField handles the POST /sessions/{id}/nodes/{nodeID}/request-body/{fieldID} request.
func (s *Server) ToggleRequestField(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		selected, err := ed.ToggleRequestField(chi.URLParam(r, "nodeID"), chi.URLParam(r, "fieldID"))
		return http.StatusOK, map[string]bool{"selected": selected}, err
	})
}

// ConnectRequest is the body of POST /sessions/{id}/edges.
type ConnectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Connect handles the POST /sessions/{id}/edges request.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var body ConnectRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		edge, err := ed.Connect(body.Source, body.Target, body.Label)
		return http.StatusCreated, edge, err
	})
}

// RemoveEdge handles the DELETE /sessions/{id}/edges/{edgeID} request.
func (s *Server) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		return http.StatusNoContent, nil, ed.RemoveEdge(chi.URLParam(r, "edgeID"))
	})
}

// ClearErrors handles the DELETE /sessions/{id}/errors request.
func (s *Server) ClearErrors(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		ed.ClearErrors()
		return http.StatusNoContent, nil, nil
	})
}

// Save handles the POST /sessions/{id}/save request.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	s.withEditor(w, r, func(ed *session.Editor) (int, any, error) {
		doc, err := ed.Save(r.Context())
		return http.StatusOK, doc, err
	})
}

// withEditor runs fn under the session lock and writes its result.
// The response is written after the lock is released.
func (s *Server) withEditor(w http.ResponseWriter, r *http.Request, fn func(ed *session.Editor) (int, any, error)) {
	var (
		status int
		body   any
	)
	err := s.Engine.Sessions().WithEditor(r.Context(), chi.URLParam(r, "id"), func(_ context.Context, ed *session.Editor) error {
		var err error
		status, body, err = fn(ed)
		return err
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, &ErrorResponse{Error: "Invalid request body"})
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// fail maps core errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var (
		fieldErrs *session.FieldErrors
		valErr    *validator.Error
	)
	switch {
	case errors.As(err, &fieldErrs):
		writeError(w, http.StatusUnprocessableEntity, &ErrorResponse{Error: "Invalid fields", Fields: fieldErrs.Fields})
	case errors.As(err, &valErr):
		writeError(w, http.StatusUnprocessableEntity, validationError(valErr))
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrEdgeNotFound),
		errors.Is(err, domain.ErrFieldNotAvailable),
		errors.Is(err, session.ErrSessionNotOpen):
		writeError(w, http.StatusNotFound, &ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNodeNotDeletable):
		writeError(w, http.StatusConflict, &ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrCardinality):
		writeError(w, http.StatusConflict, &ErrorResponse{Error: err.Error(), Category: string(validator.CategoryCardinality)})
	case errors.Is(err, domain.ErrInvalidNodeType):
		writeError(w, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
	default:
		writeError(w, http.StatusInternalServerError, &ErrorResponse{Error: "Internal error"})
		s.logger.Error("request failed", "err", err)
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error    string            `json:"error"`
	Category string            `json:"category,omitempty"`
	NodeID   string            `json:"node_id,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func validationError(err *validator.Error) *ErrorResponse {
	return &ErrorResponse{Error: err.Message, Category: string(err.Category), NodeID: err.NodeID}
}

func writeError(w http.ResponseWriter, status int, body *ErrorResponse) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
