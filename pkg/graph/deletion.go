package graph

import "github.com/aretw0/blockflow/pkg/domain"

// CanDelete decides whether a node may be removed without destroying a
// complete path. Only the two endpoints are ever protected: a start node is
// checked forward, an end node backward.
func CanDelete(nodeID string, nodeType domain.NodeType, edges []domain.Edge, resolve TypeResolver, opts ...Option) bool {
	var dir Direction
	switch nodeType {
	case domain.NodeTypeStart:
		dir = Forward
	case domain.NodeTypeEnd:
		dir = Backward
	default:
		return true
	}

	paths := EnumeratePaths(nodeID, edges, dir, opts...)
	return Classify(paths, resolve).IsValid
}

// DeletableFlags rescans every node of the graph. The cost is
// O(nodes × paths per node), which is fine for canvases of tens of nodes.
func DeletableFlags(g domain.Graph, opts ...Option) map[string]bool {
	resolve := ByDeclaredType(g.Nodes)
	flags := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		flags[n.ID] = CanDelete(n.ID, n.Type, g.Edges, resolve, opts...)
	}
	return flags
}

// Revalidate recomputes the deletable flags and applies them only when at
// least one flag changed. It returns the (possibly new) node slice and whether
// anything changed; when nothing changed the original slice is returned as-is.
func Revalidate(g domain.Graph, opts ...Option) ([]domain.Node, bool) {
	diff := domain.DiffDeletable(g.Nodes, DeletableFlags(g, opts...))
	if diff.IsEmpty() {
		return g.Nodes, false
	}
	return domain.ApplyDeletable(g.Nodes, diff), true
}
