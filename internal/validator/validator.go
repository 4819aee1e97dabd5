package validator

import (
	"fmt"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/graph"
)

// Phase is the state of a single save attempt.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseChecking Phase = "checking"
	PhaseValid    Phase = "valid"
	PhaseInvalid  Phase = "invalid"
)

// Category groups user-facing failures.
type Category string

const (
	// CategoryStructural covers missing endpoints and missing complete paths.
	CategoryStructural Category = "structural"
	// CategoryConfiguration covers incomplete Form and API blocks.
	CategoryConfiguration Category = "configuration"
	// CategoryCardinality covers a second Start or End block.
	CategoryCardinality Category = "cardinality"
)

// Error is a single user-facing validation failure.
type Error struct {
	Category Category
	Message  string
	NodeID   string
}

func (e *Error) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s (node %q)", e.Message, e.NodeID)
	}
	return e.Message
}

// Result is the outcome of a save-time validation.
type Result struct {
	Phase Phase
	// CompletePaths is the valid-path set, populated once a complete path was found.
	CompletePaths []graph.Path
	// Err is the first failure encountered, nil when Phase is PhaseValid.
	Err *Error
}

// OK reports whether the workflow may be persisted.
func (r Result) OK() bool {
	return r.Phase == PhaseValid
}

// Validate runs the save gate: structure first, then per-block configuration
// of every Form and API block on a complete path. It stops at the first failure.
func Validate(g domain.Graph, opts ...graph.Option) Result {
	res := Result{Phase: PhaseChecking}

	fail := func(category Category, msg, nodeID string) Result {
		res.Phase = PhaseInvalid
		res.Err = &Error{Category: category, Message: msg, NodeID: nodeID}
		return res
	}

	// 1. Endpoints
	starts := g.NodesOfType(domain.NodeTypeStart)
	if len(starts) != 1 || g.CountType(domain.NodeTypeEnd) == 0 {
		return fail(CategoryStructural, domain.MsgIncompleteWorkflow, "")
	}
	startID := starts[0].ID

	// 2. Reachability
	resolve := graph.ByDeclaredType(g.Nodes)
	paths := graph.EnumeratePaths(startID, g.Edges, graph.Forward, opts...)
	if graph.Classify(paths, resolve).IsValid {
		return fail(CategoryStructural, domain.MsgNoCompletePath, startID)
	}

	// 3. Valid-path set
	res.CompletePaths = graph.CompletePaths(paths, resolve)
	onPath := graph.Flatten(res.CompletePaths)

	// 4. Form blocks
	for _, id := range onPath {
		n, ok := g.Node(id)
		if !ok || n.Type != domain.NodeTypeForm {
			continue
		}
		if msg := checkForm(n); msg != "" {
			return fail(CategoryConfiguration, msg, n.ID)
		}
	}

	// 5. API blocks
	for _, id := range onPath {
		n, ok := g.Node(id)
		if !ok || n.Type != domain.NodeTypeAPI {
			continue
		}
		if msg := checkAPI(n); msg != "" {
			return fail(CategoryConfiguration, msg, n.ID)
		}
	}

	res.Phase = PhaseValid
	return res
}

func checkForm(n domain.Node) string {
	if len(n.Data.Fields) == 0 {
		return domain.MsgFormNeedsFields
	}
	for _, f := range n.Data.Fields {
		if !f.IsWellFormed() {
			return domain.MsgFormFieldsMalformed
		}
	}
	return ""
}

func checkAPI(n domain.Node) string {
	if isBlank(n.Data.URL) || len(n.Data.RequestBody) == 0 {
		return domain.MsgAPIIncomplete
	}
	return ""
}
