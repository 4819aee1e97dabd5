package dsl

import (
	"fmt"

	"github.com/aretw0/blockflow/pkg/domain"
)

type transition struct {
	target string
	label  string
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node        domain.Node
	transitions []transition
	builder     *Builder
}

func (n *NodeBuilder) typed(t domain.NodeType, label string) *NodeBuilder {
	n.node.Type = t
	if n.node.Data.Label == "" {
		n.node.Data.Label = label
	}
	return n
}

// Start marks the node as the workflow entry point.
func (n *NodeBuilder) Start() *NodeBuilder {
	return n.typed(domain.NodeTypeStart, "Start")
}

// End marks the node as the workflow exit point.
func (n *NodeBuilder) End() *NodeBuilder {
	return n.typed(domain.NodeTypeEnd, "End")
}

// Form marks the node as a form block. Add inputs with Field.
func (n *NodeBuilder) Form() *NodeBuilder {
	n.typed(domain.NodeTypeForm, "New Node")
	if n.node.Data.Fields == nil {
		n.node.Data.Fields = []domain.FormField{}
	}
	return n
}

// Conditional marks the node as a decision block. Add outcomes with Branch.
func (n *NodeBuilder) Conditional() *NodeBuilder {
	return n.typed(domain.NodeTypeConditional, "New Node")
}

// API marks the node as an API block calling url with method.
func (n *NodeBuilder) API(method domain.HTTPMethod, url string) *NodeBuilder {
	n.typed(domain.NodeTypeAPI, "New Node")
	n.node.Data.HTTPMethod = method
	n.node.Data.URL = url
	return n
}

// Label sets the canvas label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Data.Label = label
	return n
}

// Name sets the user-chosen display name.
func (n *NodeBuilder) Name(customName string) *NodeBuilder {
	n.node.Data.CustomName = customName
	return n
}

// At places the node on the canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Field appends an optional input. Ids are "<nodeID>-field-<n>".
func (n *NodeBuilder) Field(name string, t domain.FieldType) *NodeBuilder {
	return n.addField(name, t, false)
}

// RequiredField appends a mandatory input.
func (n *NodeBuilder) RequiredField(name string, t domain.FieldType) *NodeBuilder {
	return n.addField(name, t, true)
}

func (n *NodeBuilder) addField(name string, t domain.FieldType, required bool) *NodeBuilder {
	n.node.Data.Fields = append(n.node.Data.Fields, domain.FormField{
		ID:       fmt.Sprintf("%s-field-%d", n.node.ID, len(n.node.Data.Fields)+1),
		Name:     name,
		Type:     t,
		Required: required,
	})
	return n
}

// Body selects an upstream field, by name, for the API request body.
func (n *NodeBuilder) Body(fieldName string) *NodeBuilder {
	f := domain.FormField{Name: fieldName}
	if n.node.Data.RequestBody == nil {
		n.node.Data.RequestBody = make(map[string]string)
	}
	n.node.Data.RequestBody[f.NormalizedName()] = f.Placeholder()
	return n
}

// Go adds an unlabelled edge to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.transitions = append(n.transitions, transition{target: target})
	return n
}

// Branch adds a labelled edge to the target node.
func (n *NodeBuilder) Branch(label, target string) *NodeBuilder {
	n.transitions = append(n.transitions, transition{target: target, label: label})
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
