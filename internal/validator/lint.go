package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/graph"
)

// Severity ranks lint issues.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes a structural problem found by Lint.
type Issue struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"node_id,omitempty"`
	EdgeID   string   `json:"edge_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	switch {
	case i.NodeID != "":
		return fmt.Sprintf("[%s] node %q: %s", i.Severity, i.NodeID, i.Message)
	case i.EdgeID != "":
		return fmt.Sprintf("[%s] edge %q: %s", i.Severity, i.EdgeID, i.Message)
	default:
		return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	}
}

// Lint checks the whole graph and returns every issue found, not just the first.
// Configuration gaps on the valid-path set are errors; elsewhere they are warnings,
// since Validate only inspects blocks on a complete path. opts must match the
// traversal used by the save gate.
func Lint(g domain.Graph, opts ...graph.Option) []Issue {
	var issues []Issue
	add := func(sev Severity, nodeID, edgeID, msg string) {
		issues = append(issues, Issue{Severity: sev, NodeID: nodeID, EdgeID: edgeID, Message: msg})
	}

	// Duplicate ids
	seen := make(map[string]int)
	for _, n := range g.Nodes {
		seen[n.ID]++
	}
	for _, id := range sortedKeys(seen) {
		if seen[id] > 1 {
			add(SeverityError, id, "", fmt.Sprintf("node id used %d times", seen[id]))
		}
	}

	// Unknown types
	for _, n := range g.Nodes {
		if _, err := domain.ParseNodeType(string(n.Type)); err != nil {
			add(SeverityError, n.ID, "", fmt.Sprintf("unknown block type %q", n.Type))
		}
	}

	// Endpoint cardinality
	switch starts := g.CountType(domain.NodeTypeStart); {
	case starts == 0:
		add(SeverityError, "", "", "workflow has no Start Block")
	case starts > 1:
		add(SeverityError, "", "", fmt.Sprintf("workflow has %d Start Blocks; exactly one allowed", starts))
	}
	switch ends := g.CountType(domain.NodeTypeEnd); {
	case ends == 0:
		add(SeverityError, "", "", "workflow has no End Block")
	case ends > 1:
		add(SeverityError, "", "", fmt.Sprintf("workflow has %d End Blocks; exactly one allowed", ends))
	}

	// Edge endpoints
	for _, e := range g.Edges {
		if !g.HasNode(e.Source) {
			add(SeverityError, "", e.ID, fmt.Sprintf("edge references unknown source node %q", e.Source))
		}
		if !g.HasNode(e.Target) {
			add(SeverityError, "", e.ID, fmt.Sprintf("edge references unknown target node %q", e.Target))
		}
		if e.IsSelfLoop() {
			add(SeverityWarning, "", e.ID, "edge connects a node to itself")
		}
	}

	// Reachability and the valid-path set
	onPath := make(map[string]bool)
	if starts := g.NodesOfType(domain.NodeTypeStart); len(starts) == 1 {
		startID := starts[0].ID
		reached := graph.Reachable(startID, g.Edges, graph.Forward)
		for _, n := range g.Nodes {
			if n.ID != startID && !reached[n.ID] {
				add(SeverityWarning, n.ID, "", "block is not reachable from Start")
			}
		}

		res := Validate(g, opts...)
		for _, id := range graph.Flatten(res.CompletePaths) {
			onPath[id] = true
		}
		if res.Err != nil && res.Err.Message == domain.MsgNoCompletePath {
			add(SeverityError, "", "", res.Err.Message)
		}
	}

	// Block configuration
	for _, n := range g.Nodes {
		sev := SeverityWarning
		if onPath[n.ID] {
			sev = SeverityError
		}
		switch n.Type {
		case domain.NodeTypeForm:
			if msg := checkForm(n); msg != "" {
				add(sev, n.ID, "", msg)
			}
		case domain.NodeTypeAPI:
			if msg := checkAPI(n); msg != "" {
				add(sev, n.ID, "", msg)
			}
			for _, key := range collidingKeys(graph.AvailableFields(n.ID, g, opts...)) {
				add(SeverityWarning, n.ID, "", fmt.Sprintf("several upstream fields share the request key %q", key))
			}
		}
	}

	return issues
}

// collidingKeys returns the request-body keys claimed by more than one field, sorted.
func collidingKeys(fields []domain.FormField) []string {
	counts := make(map[string]int)
	for _, f := range fields {
		if key := f.NormalizedName(); key != "" {
			counts[key]++
		}
	}
	var keys []string
	for _, key := range sortedKeys(counts) {
		if counts[key] > 1 {
			keys = append(keys, key)
		}
	}
	return keys
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
