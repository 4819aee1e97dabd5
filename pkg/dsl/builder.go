package dsl

import (
	"fmt"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/session"
)

// Builder manages the document construction.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
	meta  domain.Metadata
}

// New creates a new document builder with the default metadata.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
		meta: domain.Metadata{
			Name:    domain.DefaultWorkflowName,
			Version: domain.DefaultWorkflowVersion,
		},
	}
}

// Named sets the document name and version.
func (b *Builder) Named(name, version string) *Builder {
	b.meta.Name = name
	b.meta.Version = version
	return b
}

// Add creates a new node in the document.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID: id,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build compiles the nodes, in the order they were added, into a Document.
// Every node needs a type and every edge must point at a known node.
func (b *Builder) Build() (*domain.Document, error) {
	g := domain.Graph{Nodes: make([]domain.Node, 0, len(b.order))}
	taken := make(map[string]int)

	for _, id := range b.order {
		nb := b.nodes[id]
		if nb.node.Type == "" {
			return nil, fmt.Errorf("node %q has no type", id)
		}
		g.Nodes = append(g.Nodes, nb.node.Clone())
	}

	for _, id := range b.order {
		for _, t := range b.nodes[id].transitions {
			if _, ok := b.nodes[t.target]; !ok {
				return nil, fmt.Errorf("node %q connects to unknown node %q", id, t.target)
			}
			edgeID := session.EdgeIDPrefix + id + "-" + t.target
			taken[edgeID]++
			if n := taken[edgeID]; n > 1 {
				edgeID = fmt.Sprintf("%s-%d", edgeID, n)
			}
			g.Edges = append(g.Edges, domain.Edge{ID: edgeID, Source: id, Target: t.target, Label: t.label})
		}
	}

	return domain.NewDocument(g, b.meta), nil
}
