package graph

import (
	"github.com/aretw0/blockflow/pkg/domain"
	flow "github.com/aretw0/blockflow/pkg/graph"
)

// Overlay carries derived state to highlight on an exported graph.
type Overlay struct {
	// Deletable holds the deletion-policy verdict per node.
	Deletable map[string]bool
	// OnValidPath marks nodes lying on at least one complete path.
	OnValidPath map[string]bool
}

// NewOverlay computes deletable flags and the valid-path set for g.
func NewOverlay(g domain.Graph, opts ...flow.Option) *Overlay {
	o := &Overlay{
		Deletable:   flow.DeletableFlags(g, opts...),
		OnValidPath: make(map[string]bool),
	}

	starts := g.NodesOfType(domain.NodeTypeStart)
	if len(starts) != 1 {
		return o
	}
	paths := flow.EnumeratePaths(starts[0].ID, g.Edges, flow.Forward, opts...)
	for _, id := range flow.Flatten(flow.CompletePaths(paths, flow.ByDeclaredType(g.Nodes))) {
		o.OnValidPath[id] = true
	}
	return o
}

// displayName is what a user sees on the block.
func displayName(n domain.Node) string {
	switch {
	case n.Data.CustomName != "":
		return n.Data.CustomName
	case n.Data.Label != "":
		return n.Data.Label
	default:
		return n.ID
	}
}
