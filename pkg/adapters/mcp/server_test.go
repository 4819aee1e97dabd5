package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/blockflow"
	"github.com/aretw0/blockflow/internal/validator"
	"github.com/aretw0/blockflow/pkg/adapters/memory"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/dsl"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupDocument(t *testing.T, withFields bool) *domain.Document {
	t.Helper()
	b := dsl.New()
	b.Add("start").Start().Go("form")
	form := b.Add("form").Form()
	if withFields {
		form.RequiredField("Email", domain.FieldTypeEmail).Field("Full Name", domain.FieldTypeText)
	}
	form.Go("api")
	b.Add("api").API(domain.MethodPOST, "https://example.com/signup").Body("Email").Go("end")
	b.Add("end").End()
	doc, err := b.Build()
	require.NoError(t, err)
	return doc
}

func documentArgs(t *testing.T, doc *domain.Document) DocumentArgs {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return DocumentArgs{Document: string(data)}
}

func TestHandleValidate(t *testing.T) {
	s := NewServer(blockflow.New())
	ctx := context.Background()

	res, err := s.handleValidate(ctx, mcp.CallToolRequest{}, documentArgs(t, signupDocument(t, true)))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, validator.PhaseValid, res.Phase)
	assert.Len(t, res.CompletePaths, 1)
	assert.Equal(t, map[string]bool{"start": false, "form": true, "api": true, "end": false}, res.Deletable)
	assert.Nil(t, res.Error)

	res, err = s.handleValidate(ctx, mcp.CallToolRequest{}, documentArgs(t, signupDocument(t, false)))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotNil(t, res.Error)
	assert.Equal(t, domain.MsgFormNeedsFields, res.Error.Message)
	assert.Equal(t, "form", res.Error.NodeID)
}

func TestHandleValidate_YAMLAndErrors(t *testing.T) {
	s := NewServer(blockflow.New())
	ctx := context.Background()

	yamlDoc := `
nodes:
  - id: start
    type: start
  - id: check
    type: conditional
  - id: end
    type: end
edges:
  - id: xy-edge__start-check
    source: start
    target: check
  - id: xy-edge__check-end
    source: check
    target: end
`
	res, err := s.handleValidate(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: yamlDoc, Format: "yaml"})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	_, err = s.handleValidate(ctx, mcp.CallToolRequest{}, DocumentArgs{})
	assert.Error(t, err)

	_, err = s.handleValidate(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "{"})
	assert.Error(t, err)
}

func TestHandleLint(t *testing.T) {
	s := NewServer(blockflow.New())

	res, err := s.handleLint(context.Background(), mcp.CallToolRequest{}, documentArgs(t, signupDocument(t, false)))
	require.NoError(t, err)
	assert.True(t, res.HasErrors)
	assert.NotEmpty(t, res.Issues)
}

func TestHandleFields(t *testing.T) {
	s := NewServer(blockflow.New())
	args := documentArgs(t, signupDocument(t, true))
	args.NodeID = "api"

	res, err := s.handleFields(context.Background(), mcp.CallToolRequest{}, args)
	require.NoError(t, err)
	assert.Equal(t, "api", res.NodeID)
	require.Len(t, res.Fields, 2)
	assert.Equal(t, "Email", res.Fields[0].Name)
	assert.Equal(t, "Full Name", res.Fields[1].Name)

	args.NodeID = "ghost"
	_, err = s.handleFields(context.Background(), mcp.CallToolRequest{}, args)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestHandleDeletable(t *testing.T) {
	s := NewServer(blockflow.New())

	res, err := s.handleDeletable(context.Background(), mcp.CallToolRequest{}, documentArgs(t, signupDocument(t, false)))
	require.NoError(t, err)
	// Deletion only looks at structure, so an unconfigured form still protects the endpoints.
	assert.Equal(t, map[string]bool{"start": false, "form": true, "api": true, "end": false}, res.Deletable)
}

func TestGetWorkflowAndResource(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "signup", signupDocument(t, true)))
	s := NewServer(blockflow.New(blockflow.WithStore(store)))

	req := mcp.CallToolRequest{}
	req.Params.Name = "get_workflow"
	req.Params.Arguments = map[string]any{"id": "signup"}
	res, err := s.handleGetWorkflow(ctx, req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"id":"form"`)

	req.Params.Arguments = map[string]any{"id": "missing"}
	res, err = s.handleGetWorkflow(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.IsError)

	contents, err := s.readWorkflows(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	resource, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, WorkflowsURI, resource.URI)
	assert.JSONEq(t, `{"workflows": ["signup"]}`, resource.Text)
}
