package blockflow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/blockflow/internal/logging"
	"github.com/aretw0/blockflow/internal/validator"
	"github.com/aretw0/blockflow/pkg/adapters/memory"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/graph"
	"github.com/aretw0/blockflow/pkg/ports"
	"github.com/aretw0/blockflow/pkg/session"
)

// Engine is the high-level entry point for the blockflow library.
// It owns the session manager used by interactive editors and answers
// stateless questions about whole documents.
type Engine struct {
	store     ports.WorkflowStore
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	traversal []graph.Option
	name      string
	version   string

	sessions *session.Manager
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets where saved workflows are persisted. Defaults to an in-memory store.
func WithStore(store ports.WorkflowStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed session locks, for running several replicas
// against one store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on every editor.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithTraversal passes traversal options (e.g. graph.WithExhaustive) to every path query.
func WithTraversal(opts ...graph.Option) Option {
	return func(e *Engine) {
		e.traversal = append(e.traversal, opts...)
	}
}

// WithMetadata sets the name and version written on save.
func WithMetadata(name, version string) Option {
	return func(e *Engine) {
		e.name = name
		e.version = version
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	managerOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithEditorOptions(
			session.WithTraversal(eng.traversal...),
			session.WithMetadata(eng.name, eng.version),
			session.WithHooks(eng.hooks),
		),
	}
	if eng.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(eng.locker))
		if eng.lockTTL > 0 {
			managerOpts = append(managerOpts, session.WithLockTTL(eng.lockTTL))
		}
	}
	eng.sessions = session.NewManager(eng.store, managerOpts...)
	return eng
}

// Sessions returns the manager that serialises access to open editors.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Store returns the workflow store.
func (e *Engine) Store() ports.WorkflowStore {
	return e.store
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Validate runs the save gate on a document without persisting it.
func (e *Engine) Validate(doc *domain.Document) validator.Result {
	return validator.Validate(doc.Graph(), e.traversal...)
}

// Lint reports every structural and configuration issue in a document.
func (e *Engine) Lint(doc *domain.Document) []validator.Issue {
	return validator.Lint(doc.Graph(), e.traversal...)
}

// Inspect returns the document's graph with deletable flags computed.
func (e *Engine) Inspect(doc *domain.Document) domain.Graph {
	g := doc.Graph()
	nodes, _ := graph.Revalidate(g, e.traversal...)
	g.Nodes = nodes
	return g
}

// Deletable maps every node id of the document to its deletable flag.
func (e *Engine) Deletable(doc *domain.Document) map[string]bool {
	return graph.DeletableFlags(doc.Graph(), e.traversal...)
}

// AvailableFields lists the form fields upstream of nodeID.
func (e *Engine) AvailableFields(doc *domain.Document, nodeID string) ([]domain.FormField, error) {
	g := doc.Graph()
	if !g.HasNode(nodeID) {
		return nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, nodeID)
	}
	return graph.AvailableFields(nodeID, g, e.traversal...), nil
}
