package domain

import "time"

// Graph is an immutable-by-convention snapshot of the editor canvas.
// Every query in the core receives a Graph and never mutates it;
// the editing session is the only writer.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given id exists.
func (g Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// NodesOfType returns the nodes of the given type in canvas order.
func (g Graph) NodesOfType(t NodeType) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// CountType returns how many nodes have the given type.
func (g Graph) CountType(t NodeType) int {
	count := 0
	for _, n := range g.Nodes {
		if n.Type == t {
			count++
		}
	}
	return count
}

// Incoming returns the edges whose target is id.
func (g Graph) Incoming(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// Edge returns the edge with the given id.
func (g Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Types maps node ids to their declared type.
func (g Graph) Types() map[string]NodeType {
	types := make(map[string]NodeType, len(g.Nodes))
	for _, n := range g.Nodes {
		types[n.ID] = n.Type
	}
	return types
}

// Clone returns a deep copy, so callers can hand out snapshots safely.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Edges, g.Edges)
	return out
}

// Metadata describes a saved workflow document.
type Metadata struct {
	Name    string    `json:"name" yaml:"name"`
	Version string    `json:"version" yaml:"version"`
	Created time.Time `json:"created" yaml:"created"`
}

// NodeRecord is the persisted shape of a node (derived flags are not stored).
type NodeRecord struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// Document is the artifact written on a successful save.
type Document struct {
	Nodes    []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges    []Edge       `json:"edges" yaml:"edges"`
	Metadata Metadata     `json:"metadata" yaml:"metadata"`
}

// NewDocument snapshots a graph into its persisted form.
func NewDocument(g Graph, meta Metadata) *Document {
	doc := &Document{
		Nodes:    make([]NodeRecord, 0, len(g.Nodes)),
		Edges:    make([]Edge, len(g.Edges)),
		Metadata: meta,
	}
	for _, n := range g.Nodes {
		c := n.Clone()
		doc.Nodes = append(doc.Nodes, NodeRecord{
			ID:       c.ID,
			Type:     c.Type,
			Position: c.Position,
			Data:     c.Data,
		})
	}
	copy(doc.Edges, g.Edges)
	return doc
}

// Graph rebuilds the canvas graph from the document.
// Deletable flags are left false; the session recomputes them.
func (d *Document) Graph() Graph {
	g := Graph{
		Nodes: make([]Node, 0, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}
	for _, r := range d.Nodes {
		g.Nodes = append(g.Nodes, Node{
			ID:       r.ID,
			Type:     r.Type,
			Position: r.Position,
			Data:     r.Data.Clone(),
		})
	}
	copy(g.Edges, d.Edges)
	return g
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Nodes:    make([]NodeRecord, len(d.Nodes)),
		Edges:    make([]Edge, len(d.Edges)),
		Metadata: d.Metadata,
	}
	for i, r := range d.Nodes {
		r.Data = r.Data.Clone()
		out.Nodes[i] = r
	}
	copy(out.Edges, d.Edges)
	return out
}
