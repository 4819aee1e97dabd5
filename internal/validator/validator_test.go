package validator

import (
	"testing"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string, t domain.NodeType) domain.Node {
	return domain.Node{ID: id, Type: t}
}

func edge(source, target string) domain.Edge {
	return domain.Edge{ID: "xy-edge__" + source + "-" + target, Source: source, Target: target}
}

func textField(id, name string) domain.FormField {
	return domain.FormField{ID: id, Name: name, Type: domain.FieldTypeText}
}

func linear(middle domain.Node) domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{node("start", domain.NodeTypeStart), middle, node("end", domain.NodeTypeEnd)},
		Edges: []domain.Edge{edge("start", middle.ID), edge(middle.ID, "end")},
	}
}

func TestValidate_IncompleteWorkflow(t *testing.T) {
	tests := []struct {
		name  string
		nodes []domain.Node
	}{
		{"empty", nil},
		{"no end", []domain.Node{node("start", domain.NodeTypeStart)}},
		{"no start", []domain.Node{node("end", domain.NodeTypeEnd)}},
		{"two starts", []domain.Node{node("s1", domain.NodeTypeStart), node("s2", domain.NodeTypeStart), node("end", domain.NodeTypeEnd)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(domain.Graph{Nodes: tt.nodes})
			require.NotNil(t, res.Err)
			assert.Equal(t, PhaseInvalid, res.Phase)
			assert.Equal(t, CategoryStructural, res.Err.Category)
			assert.Equal(t, domain.MsgIncompleteWorkflow, res.Err.Message)
			assert.False(t, res.OK())
		})
	}
}

func TestValidate_DirectStartToEnd(t *testing.T) {
	g := domain.Graph{
		Nodes: []domain.Node{node("start", domain.NodeTypeStart), node("end", domain.NodeTypeEnd)},
		Edges: []domain.Edge{edge("start", "end")},
	}

	res := Validate(g)
	require.NotNil(t, res.Err)
	assert.Contains(t, res.Err.Message, "no path from Start to End")
	assert.Empty(t, res.CompletePaths)
}

func TestValidate_EmptyForm(t *testing.T) {
	res := Validate(linear(node("form", domain.NodeTypeForm)))

	require.NotNil(t, res.Err)
	assert.Equal(t, CategoryConfiguration, res.Err.Category)
	assert.Equal(t, "form", res.Err.NodeID)
	assert.Contains(t, res.Err.Message, "at least one field")
	assert.Len(t, res.CompletePaths, 1, "valid-path set is computed before block checks")
}

func TestValidate_FormWithField(t *testing.T) {
	form := node("form", domain.NodeTypeForm)
	form.Data.Fields = []domain.FormField{{ID: "f1", Name: "x", Type: domain.FieldTypeText}}

	res := Validate(linear(form))

	assert.Nil(t, res.Err)
	assert.Equal(t, PhaseValid, res.Phase)
	assert.True(t, res.OK())
	assert.Equal(t, []graph.Path{{"start", "form", "end"}}, res.CompletePaths)
}

func TestValidate_MalformedField(t *testing.T) {
	tests := []struct {
		name  string
		field domain.FormField
	}{
		{"blank name", domain.FormField{ID: "f1", Name: "  ", Type: domain.FieldTypeText}},
		{"missing type", domain.FormField{ID: "f1", Name: "email"}},
		{"unknown type", domain.FormField{ID: "f1", Name: "email", Type: "banana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := node("form", domain.NodeTypeForm)
			form.Data.Fields = []domain.FormField{textField("f0", "ok"), tt.field}

			res := Validate(linear(form))
			require.NotNil(t, res.Err)
			assert.Equal(t, domain.MsgFormFieldsMalformed, res.Err.Message)
		})
	}
}

func TestValidate_APIBlock(t *testing.T) {
	tests := []struct {
		name  string
		data  domain.NodeData
		valid bool
	}{
		{"missing url and body", domain.NodeData{}, false},
		{"blank url", domain.NodeData{URL: "   ", RequestBody: map[string]string{"f1": "{{email}}"}}, false},
		{"missing body", domain.NodeData{URL: "https://example.com/hook"}, false},
		{"complete", domain.NodeData{URL: "https://example.com/hook", RequestBody: map[string]string{"f1": "{{email}}"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := node("api", domain.NodeTypeAPI)
			api.Data = tt.data

			res := Validate(linear(api))
			if tt.valid {
				assert.Nil(t, res.Err)
				return
			}
			require.NotNil(t, res.Err)
			assert.Equal(t, domain.MsgAPIIncomplete, res.Err.Message)
			assert.Equal(t, "api", res.Err.NodeID)
		})
	}
}

func TestValidate_FormsCheckedBeforeAPIs(t *testing.T) {
	api := node("api", domain.NodeTypeAPI)
	form := node("form", domain.NodeTypeForm)
	g := domain.Graph{
		Nodes: []domain.Node{node("start", domain.NodeTypeStart), api, form, node("end", domain.NodeTypeEnd)},
		Edges: []domain.Edge{edge("start", "api"), edge("api", "form"), edge("form", "end")},
	}

	res := Validate(g)
	require.NotNil(t, res.Err)
	assert.Equal(t, "form", res.Err.NodeID)
}

func TestValidate_IgnoresBlocksOffThePath(t *testing.T) {
	form := node("form", domain.NodeTypeForm)
	form.Data.Fields = []domain.FormField{textField("f1", "name")}
	g := linear(form)
	// An unconfigured API dangling from nothing is not on any complete path.
	g.Nodes = append(g.Nodes, node("api", domain.NodeTypeAPI))

	res := Validate(g)
	assert.Nil(t, res.Err)
}

func TestValidate_UsesDeclaredTypeNotIDPrefix(t *testing.T) {
	form := node("starting-point", domain.NodeTypeForm)
	form.Data.Fields = []domain.FormField{textField("f1", "name")}
	g := domain.Graph{
		Nodes: []domain.Node{node("begin", domain.NodeTypeStart), form, node("finish", domain.NodeTypeEnd)},
		Edges: []domain.Edge{edge("begin", "starting-point"), edge("starting-point", "finish")},
	}

	assert.True(t, Validate(g).OK())
}

func TestValidate_BranchToBareEnd(t *testing.T) {
	form := node("form", domain.NodeTypeForm)
	form.Data.Fields = []domain.FormField{textField("f1", "name")}
	g := domain.Graph{
		Nodes: []domain.Node{node("start", domain.NodeTypeStart), form, node("end", domain.NodeTypeEnd)},
		Edges: []domain.Edge{edge("start", "end"), edge("start", "form"), edge("form", "end")},
	}

	def := Validate(g)
	exh := Validate(g, graph.WithExhaustive(0))

	assert.True(t, exh.OK())
	assert.Len(t, exh.CompletePaths, 1)
	// The form branch is popped first, so it claims "end".
	assert.True(t, def.OK())
	assert.Equal(t, []graph.Path{{"start", "form", "end"}}, def.CompletePaths)
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "boom", (&Error{Message: "boom"}).Error())
	assert.Equal(t, `boom (node "n1")`, (&Error{Message: "boom", NodeID: "n1"}).Error())
}
