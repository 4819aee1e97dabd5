package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/blockflow/internal/logging"
	"github.com/aretw0/blockflow/internal/validator"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/graph"
	"github.com/aretw0/blockflow/pkg/ports"
	"github.com/aretw0/blockflow/pkg/sanitize"
	"github.com/google/uuid"
)

// EdgeIDPrefix starts every generated edge id.
const EdgeIDPrefix = "xy-edge__"

// Editor is the single mutator of one workflow canvas. Every mutation
// recomputes the deletable flags and swaps in a fresh node slice when any
// flag changed.
//
// Editor is not safe for concurrent use; Manager serialises access.
type Editor struct {
	id    string
	nodes []domain.Node
	edges []domain.Edge

	errors []string
	phase  validator.Phase

	store     ports.WorkflowStore
	traversal []graph.Option
	name      string
	version   string
	now       func() time.Time
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithStore sets where Save persists documents. Without a store, Save only
// validates and builds the document.
func WithStore(store ports.WorkflowStore) EditorOption {
	return func(e *Editor) {
		e.store = store
	}
}

// WithTraversal passes traversal options (e.g. graph.WithExhaustive) to every
// path query the editor runs.
func WithTraversal(opts ...graph.Option) EditorOption {
	return func(e *Editor) {
		e.traversal = append(e.traversal, opts...)
	}
}

// WithMetadata sets the name and version written on save.
func WithMetadata(name, version string) EditorOption {
	return func(e *Editor) {
		if name != "" {
			e.name = name
		}
		if version != "" {
			e.version = version
		}
	}
}

// WithClock overrides the time source used for the created timestamp.
func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) {
		e.now = now
	}
}

// WithEditorLogger configures a logger for the Editor.
func WithEditorLogger(logger *slog.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.LifecycleHooks) EditorOption {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// NewEditor creates an empty canvas for workflow id.
func NewEditor(id string, opts ...EditorOption) *Editor {
	e := &Editor{
		id:      id,
		phase:   validator.PhaseIdle,
		name:    domain.DefaultWorkflowName,
		version: domain.DefaultWorkflowVersion,
		now:     time.Now,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the workflow id the editor saves under.
func (e *Editor) ID() string {
	return e.id
}

// Load replaces the canvas with a saved document. Name and version are taken
// from the document when present; errors and phase are reset.
func (e *Editor) Load(doc *domain.Document) {
	g := doc.Graph()
	e.nodes = g.Nodes
	e.edges = g.Edges
	if doc.Metadata.Name != "" {
		e.name = doc.Metadata.Name
	}
	if doc.Metadata.Version != "" {
		e.version = doc.Metadata.Version
	}
	e.errors = nil
	e.phase = validator.PhaseIdle
	e.revalidate()
}

func (e *Editor) graph() domain.Graph {
	return domain.Graph{Nodes: e.nodes, Edges: e.edges}
}

// revalidate recomputes deletable flags and writes them back only on change.
func (e *Editor) revalidate() {
	if nodes, changed := graph.Revalidate(e.graph(), e.traversal...); changed {
		e.nodes = nodes
	}
}

func (e *Editor) appendError(msg string) {
	for _, existing := range e.errors {
		if existing == msg {
			return
		}
	}
	e.errors = append(e.errors, msg)
}

// checkCardinality enforces at most one start and one end block.
func (e *Editor) checkCardinality(t domain.NodeType) error {
	g := e.graph()
	var msg string
	switch {
	case t == domain.NodeTypeStart && g.CountType(domain.NodeTypeStart) > 0:
		msg = domain.MsgOnlyOneStart
	case t == domain.NodeTypeEnd && g.CountType(domain.NodeTypeEnd) > 0:
		msg = domain.MsgOnlyOneEnd
	default:
		return nil
	}
	e.appendError(msg)
	return fmt.Errorf("%w: %s", domain.ErrCardinality, msg)
}

func (e *Editor) nextNodeID(t domain.NodeType) string {
	if len(e.nodes) == 0 {
		return string(t)
	}
	g := e.graph()
	for n := len(e.nodes) + 1; ; n++ {
		id := fmt.Sprintf("%s_%d", t, n)
		if !g.HasNode(id) {
			return id
		}
	}
}

func defaultLabel(t domain.NodeType) string {
	switch t {
	case domain.NodeTypeStart:
		return "Start"
	case domain.NodeTypeEnd:
		return "End"
	default:
		return "New Node"
	}
}

// AddBlock drops a new block of type t at pos.
func (e *Editor) AddBlock(t domain.NodeType, pos domain.Position) (domain.Node, error) {
	if _, err := domain.ParseNodeType(string(t)); err != nil {
		return domain.Node{}, err
	}
	if err := e.checkCardinality(t); err != nil {
		return domain.Node{}, err
	}

	n := domain.Node{
		ID:       e.nextNodeID(t),
		Type:     t,
		Position: pos,
		Data: domain.NodeData{
			Label:  defaultLabel(t),
			Fields: []domain.FormField{},
		},
	}
	e.nodes = append(e.nodes[:len(e.nodes):len(e.nodes)], n)
	e.revalidate()

	e.logger.Debug("block added", "workflow_id", e.id, "node_id", n.ID, "type", t)
	e.emitNode(e.hooks.OnBlockAdded, domain.EventBlockAdded, n)
	added, _ := e.graph().Node(n.ID)
	return added, nil
}

// InsertNode adds a pre-built node, e.g. when importing. The id must be unused.
func (e *Editor) InsertNode(n domain.Node) error {
	if _, err := domain.ParseNodeType(string(n.Type)); err != nil {
		return err
	}
	if n.ID == "" {
		return fmt.Errorf("node id cannot be empty")
	}
	if e.graph().HasNode(n.ID) {
		return fmt.Errorf("node %q already exists", n.ID)
	}
	if err := e.checkCardinality(n.Type); err != nil {
		return err
	}

	n = n.Clone()
	n.Deletable = false
	e.nodes = append(e.nodes[:len(e.nodes):len(e.nodes)], n)
	e.revalidate()
	e.emitNode(e.hooks.OnBlockAdded, domain.EventBlockAdded, n)
	return nil
}

// Connect draws an edge from source to target.
func (e *Editor) Connect(source, target, label string) (domain.Edge, error) {
	g := e.graph()
	for _, id := range []string{source, target} {
		if !g.HasNode(id) {
			return domain.Edge{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
		}
	}

	base := EdgeIDPrefix + source + "-" + target
	id := base
	for n := 2; ; n++ {
		if _, taken := g.Edge(id); !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}

	edge := domain.Edge{ID: id, Source: source, Target: target, Label: label}
	e.edges = append(e.edges[:len(e.edges):len(e.edges)], edge)
	e.revalidate()

	e.logger.Debug("edge added", "workflow_id", e.id, "edge_id", id)
	return edge, nil
}

// RemoveEdge deletes an edge by id.
func (e *Editor) RemoveEdge(id string) error {
	next := make([]domain.Edge, 0, len(e.edges))
	for _, edge := range e.edges {
		if edge.ID != id {
			next = append(next, edge)
		}
	}
	if len(next) == len(e.edges) {
		return fmt.Errorf("%w: %q", domain.ErrEdgeNotFound, id)
	}
	e.edges = next
	e.revalidate()
	return nil
}

// MoveNode updates a node's canvas position.
func (e *Editor) MoveNode(id string, pos domain.Position) error {
	return e.updateNode(id, func(n *domain.Node) error {
		n.Position = pos
		return nil
	})
}

// RemoveNode deletes a node and its incident edges. Start and end blocks that
// anchor a complete path are refused with ErrNodeNotDeletable.
func (e *Editor) RemoveNode(id string) error {
	n, ok := e.graph().Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	if !n.Deletable {
		return fmt.Errorf("%w: %q", domain.ErrNodeNotDeletable, id)
	}

	nodes := make([]domain.Node, 0, len(e.nodes))
	for _, other := range e.nodes {
		if other.ID != id {
			nodes = append(nodes, other)
		}
	}
	edges := make([]domain.Edge, 0, len(e.edges))
	for _, edge := range e.edges {
		if edge.Source != id && edge.Target != id {
			edges = append(edges, edge)
		}
	}
	e.nodes, e.edges = nodes, edges
	e.revalidate()

	e.logger.Debug("block removed", "workflow_id", e.id, "node_id", id)
	e.emitNode(e.hooks.OnBlockRemoved, domain.EventBlockRemoved, n)
	return nil
}

// updateNode applies fn to a copy of the node and swaps in a new node slice.
func (e *Editor) updateNode(id string, fn func(*domain.Node) error) error {
	idx := -1
	for i, n := range e.nodes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}

	updated := e.nodes[idx].Clone()
	if err := fn(&updated); err != nil {
		return err
	}

	nodes := make([]domain.Node, len(e.nodes))
	copy(nodes, e.nodes)
	nodes[idx] = updated
	e.nodes = nodes
	e.revalidate()
	return nil
}

func (e *Editor) nodeOfType(id string, t domain.NodeType) (domain.Node, error) {
	n, ok := e.graph().Node(id)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	if n.Type != t {
		return domain.Node{}, fmt.Errorf("%w: node %q is a %s block, not %s", domain.ErrInvalidNodeType, id, n.Type, t)
	}
	return n, nil
}

func sanitizedName(customName string, errs *FieldErrors) string {
	name, err := sanitize.Name(customName)
	if err != nil {
		errs.add("customName", err.Error())
	}
	return name
}

// ConfigureForm replaces a form block's display name and fields. Fields
// without an id get one. On any FieldErrors the node is left untouched.
func (e *Editor) ConfigureForm(id, customName string, fields []domain.FormField) error {
	if _, err := e.nodeOfType(id, domain.NodeTypeForm); err != nil {
		return err
	}

	errs := &FieldErrors{}
	name := sanitizedName(customName, errs)

	next := make([]domain.FormField, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		f.Name = strings.TrimSpace(f.Name)
		next[i] = f
	}

	if len(next) == 0 {
		errs.add(FieldErrorNone, MsgNeedOneField)
	}
	for _, f := range next {
		if !f.HasName() {
			errs.add(f.ID+"_name", MsgFieldRequired)
		}
		switch {
		case !f.HasType():
			errs.add(f.ID+"_type", MsgFieldTypeRequired)
		case !f.HasKnownType():
			errs.add(f.ID+"_type", MsgInvalidFieldType)
		}
	}
	if err := errs.orNil(); err != nil {
		return err
	}

	return e.updateNode(id, func(n *domain.Node) error {
		n.Data.CustomName = name
		n.Data.Fields = next
		return nil
	})
}

// ConfigureAPI sets an API block's display name, method and endpoint. The
// request body is kept; it is edited with ToggleRequestField.
func (e *Editor) ConfigureAPI(id, customName, method, endpoint string) error {
	if _, err := e.nodeOfType(id, domain.NodeTypeAPI); err != nil {
		return err
	}

	errs := &FieldErrors{}
	name := sanitizedName(customName, errs)

	m, err := domain.ParseHTTPMethod(strings.ToUpper(strings.TrimSpace(method)))
	if err != nil {
		errs.add("httpMethod", MsgInvalidMethod)
	}
	u := sanitize.URL(endpoint)
	if u == "" {
		errs.add("url", MsgInvalidURL)
	}
	if err := errs.orNil(); err != nil {
		return err
	}

	return e.updateNode(id, func(n *domain.Node) error {
		n.Data.CustomName = name
		n.Data.HTTPMethod = m
		n.Data.URL = u
		return nil
	})
}

// AvailableFields lists the form fields upstream of nodeID.
func (e *Editor) AvailableFields(nodeID string) ([]domain.FormField, error) {
	if !e.graph().HasNode(nodeID) {
		return nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, nodeID)
	}
	return graph.AvailableFields(nodeID, e.graph(), e.traversal...), nil
}

// ToggleRequestField adds the upstream field to the API block's request body,
// or removes it when already present. It reports whether the field is now selected.
// The body is keyed by the field's normalised name, so upstream fields whose
// names normalise alike ("Email", "email") share one entry and toggle it
// together. Lint warns about such collisions.
func (e *Editor) ToggleRequestField(apiID, fieldID string) (bool, error) {
	if _, err := e.nodeOfType(apiID, domain.NodeTypeAPI); err != nil {
		return false, err
	}

	f, ok := graph.FindField(apiID, fieldID, e.graph(), e.traversal...)
	if !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrFieldNotAvailable, fieldID)
	}
	key := f.NormalizedName()
	if key == "" {
		return false, fmt.Errorf("%w: field %q has no usable name", domain.ErrFieldNotAvailable, fieldID)
	}

	var selected bool
	err := e.updateNode(apiID, func(n *domain.Node) error {
		if _, present := n.Data.RequestBody[key]; present {
			delete(n.Data.RequestBody, key)
			if len(n.Data.RequestBody) == 0 {
				n.Data.RequestBody = nil
			}
			return nil
		}
		if n.Data.RequestBody == nil {
			n.Data.RequestBody = make(map[string]string)
		}
		n.Data.RequestBody[key] = f.Placeholder()
		selected = true
		return nil
	})
	return selected, err
}

// Deletable reports the current deletable flag of a node.
func (e *Editor) Deletable(id string) (bool, error) {
	n, ok := e.graph().Node(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	return n.Deletable, nil
}

// Snapshot returns a deep copy of the canvas.
func (e *Editor) Snapshot() domain.Graph {
	return e.graph().Clone()
}

// Errors returns the workflow error banner contents.
func (e *Editor) Errors() []string {
	out := make([]string, len(e.errors))
	copy(out, e.errors)
	return out
}

// ClearErrors dismisses the error banner.
func (e *Editor) ClearErrors() {
	e.errors = nil
}

// Phase returns the state of the last save attempt.
func (e *Editor) Phase() validator.Phase {
	return e.phase
}

// Save runs the save gate. On failure the error list is replaced by the
// single failure message and nothing is persisted. On success the document is
// written to the store and the list is cleared. A store failure leaves the
// list as it was.
func (e *Editor) Save(ctx context.Context) (*domain.Document, error) {
	e.phase = validator.PhaseChecking

	res := validator.Validate(e.graph(), e.traversal...)
	if !res.OK() {
		e.phase = validator.PhaseInvalid
		e.errors = []string{res.Err.Message}
		e.logger.Info("workflow rejected", "workflow_id", e.id, "category", res.Err.Category, "reason", res.Err.Message)
		e.emitSave(&domain.SaveEvent{
			EventBase: e.event(domain.EventWorkflowRejected),
			Category:  string(res.Err.Category),
			Reason:    res.Err.Message,
			Nodes:     len(e.nodes),
			Edges:     len(e.edges),
		})
		return nil, res.Err
	}

	doc := domain.NewDocument(e.graph(), domain.Metadata{
		Name:    e.name,
		Version: e.version,
		Created: e.now().UTC(),
	})

	if e.store != nil {
		if err := e.store.Save(ctx, e.id, doc); err != nil {
			e.phase = validator.PhaseIdle
			return nil, fmt.Errorf("failed to persist workflow %q: %w", e.id, err)
		}
	}

	e.errors = nil
	e.phase = validator.PhaseValid
	e.logger.Info("workflow saved", "workflow_id", e.id, "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	e.emitSave(&domain.SaveEvent{
		EventBase: e.event(domain.EventWorkflowSaved),
		Nodes:     len(doc.Nodes),
		Edges:     len(doc.Edges),
	})
	return doc, nil
}

func (e *Editor) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, WorkflowID: e.id}
}

func (e *Editor) emitNode(hook func(*domain.NodeEvent), t domain.EventType, n domain.Node) {
	if hook == nil {
		return
	}
	hook(&domain.NodeEvent{EventBase: e.event(t), NodeID: n.ID, NodeType: n.Type})
}

func (e *Editor) emitSave(ev *domain.SaveEvent) {
	if e.hooks.OnSave != nil {
		e.hooks.OnSave(ev)
	}
}
