package domain

import "fmt"

// NodeType identifies the structural role of a block on the canvas.
type NodeType string

// NodeType constants define the block palette.
const (
	// NodeTypeStart is the single entry point of a workflow.
	NodeTypeStart NodeType = "start"
	// NodeTypeForm collects user input through a list of fields.
	NodeTypeForm NodeType = "form"
	// NodeTypeConditional is a decision point with outgoing branches.
	NodeTypeConditional NodeType = "conditional"
	// NodeTypeAPI performs an HTTP call built from upstream form fields.
	NodeTypeAPI NodeType = "api"
	// NodeTypeEnd is the single exit point of a workflow.
	NodeTypeEnd NodeType = "end"
)

// NodeTypes lists every block type in palette order.
var NodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeForm,
	NodeTypeConditional,
	NodeTypeAPI,
	NodeTypeEnd,
}

// ParseNodeType converts a raw string into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	for _, t := range NodeTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidNodeType, s)
}

// IsTerminal reports whether the type is one of the two workflow endpoints.
func (t NodeType) IsTerminal() bool {
	return t == NodeTypeStart || t == NodeTypeEnd
}

// HTTPMethod is the verb an API block uses.
type HTTPMethod string

const (
	MethodPUT  HTTPMethod = "PUT"
	MethodPOST HTTPMethod = "POST"
)

// ParseHTTPMethod accepts only the methods an API block supports.
func ParseHTTPMethod(s string) (HTTPMethod, error) {
	switch HTTPMethod(s) {
	case MethodPUT, MethodPOST:
		return HTTPMethod(s), nil
	default:
		return "", fmt.Errorf("unsupported http method %q", s)
	}
}

// Position is the canvas coordinate of a node.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// NodeData is the type-specific payload of a node.
// Form blocks use Fields; API blocks use HTTPMethod, URL and RequestBody.
// Start, End and Conditional blocks only carry the label.
type NodeData struct {
	Label      string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	CustomName string `json:"customName,omitempty" yaml:"customName,omitempty" mapstructure:"customName"`

	Fields []FormField `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields"`

	HTTPMethod  HTTPMethod        `json:"httpMethod,omitempty" yaml:"httpMethod,omitempty" mapstructure:"httpMethod"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	RequestBody map[string]string `json:"requestBody,omitempty" yaml:"requestBody,omitempty" mapstructure:"requestBody"`
}

// Clone returns a deep copy of the payload.
func (d NodeData) Clone() NodeData {
	out := d
	if d.Fields != nil {
		out.Fields = make([]FormField, len(d.Fields))
		copy(out.Fields, d.Fields)
	}
	if d.RequestBody != nil {
		out.RequestBody = make(map[string]string, len(d.RequestBody))
		for k, v := range d.RequestBody {
			out.RequestBody[k] = v
		}
	}
	return out
}

// Node represents a block placed on the canvas.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`

	// Deletable is derived by the deletion policy and never persisted.
	Deletable bool `json:"deletable" yaml:"-"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	out.Data = n.Data.Clone()
	return out
}
