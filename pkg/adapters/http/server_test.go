package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/blockflow"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/dsl"
	"github.com/aretw0/blockflow/pkg/observability"
	"github.com/aretw0/blockflow/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...blockflow.Option) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	opts = append(opts, blockflow.WithLifecycleHooks(metrics.Hooks()))
	handler, err := NewHandler(blockflow.New(opts...), WithMetrics(metrics, reg))
	require.NoError(t, err)
	return handler
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, "POST", "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody[map[string]string](t, w)["id"]
	require.NotEmpty(t, id)
	return id
}

func addNode(t *testing.T, h http.Handler, sessionID string, typ domain.NodeType) domain.Node {
	t.Helper()
	w := do(t, h, "POST", "/sessions/"+sessionID+"/nodes", AddNodeRequest{Type: typ})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[domain.Node](t, w)
}

func connect(t *testing.T, h http.Handler, sessionID, source, target string) domain.Edge {
	t.Helper()
	w := do(t, h, "POST", "/sessions/"+sessionID+"/edges", ConnectRequest{Source: source, Target: target})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[domain.Edge](t, w)
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])

	w = do(t, h, "GET", "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, "blockflow-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, strings.TrimSpace(blockflow.Version), info["version"])

	w = do(t, h, "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestLoadSpec(t *testing.T) {
	spec, err := LoadSpec()
	require.NoError(t, err)
	assert.NotNil(t, spec.Paths.Find("/sessions/{id}/save"))
	assert.Contains(t, spec.Components.Schemas, "Document")
}

func TestSessionEditingFlow(t *testing.T) {
	h := newTestHandler(t)
	id := createSession(t, h)
	base := "/sessions/" + id

	start := addNode(t, h, id, domain.NodeTypeStart)
	form := addNode(t, h, id, domain.NodeTypeForm)
	end := addNode(t, h, id, domain.NodeTypeEnd)
	assert.Equal(t, []string{"start", "form_2", "end_3"}, []string{start.ID, form.ID, end.ID})

	// Cardinality
	w := do(t, h, "POST", base+"/nodes", AddNodeRequest{Type: domain.NodeTypeStart})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "cardinality", decodeBody[ErrorResponse](t, w).Category)

	connect(t, h, id, "start", "form_2")
	edge := connect(t, h, id, "form_2", "end_3")
	assert.Equal(t, "xy-edge__form_2-end_3", edge.ID)

	w = do(t, h, "GET", base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody[SessionResponse](t, w)
	assert.Equal(t, []string{domain.MsgOnlyOneStart}, view.Errors)
	for _, n := range view.Nodes {
		assert.Equal(t, n.ID == "form_2", n.Deletable, n.ID)
	}

	// Protected endpoint
	w = do(t, h, "DELETE", base+"/nodes/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Empty form blocks the save
	w = do(t, h, "POST", base+"/save", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	saveErr := decodeBody[ErrorResponse](t, w)
	assert.Equal(t, domain.MsgFormNeedsFields, saveErr.Error)
	assert.Equal(t, "configuration", saveErr.Category)
	assert.Equal(t, "form_2", saveErr.NodeID)

	// Form dialog validation
	w = do(t, h, "PUT", base+"/nodes/form_2/form", FormRequest{Fields: []domain.FormField{}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, w).Fields, "none")

	w = do(t, h, "PUT", base+"/nodes/form_2/form", FormRequest{
		Fields: []domain.FormField{{ID: "f1", Name: "Email", Type: "banana"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"f1_type": session.MsgInvalidFieldType}, decodeBody[ErrorResponse](t, w).Fields)

	w = do(t, h, "PUT", base+"/nodes/form_2/form", FormRequest{
		CustomName: "Contact",
		Fields:     []domain.FormField{{ID: "email", Name: "Email", Type: domain.FieldTypeEmail, Required: true}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Contact", decodeBody[domain.Node](t, w).Data.CustomName)

	w = do(t, h, "POST", base+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	doc := decodeBody[domain.Document](t, w)
	assert.Len(t, doc.Nodes, 3)
	assert.Equal(t, domain.DefaultWorkflowName, doc.Metadata.Name)

	view = decodeBody[SessionResponse](t, do(t, h, "GET", base, nil))
	assert.Empty(t, view.Errors)
	assert.Equal(t, "valid", string(view.Phase))

	// Metrics saw the editor events and the requests
	w = do(t, h, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `blockflow_save_attempts_total{category="",outcome="workflow_saved"} 1`)
	assert.Contains(t, w.Body.String(), `blockflow_http_requests_total{code="201",method="POST",route="/sessions/{id}/nodes"} 3`)
}

func TestAPIBlockFlow(t *testing.T) {
	h := newTestHandler(t)
	id := createSession(t, h)
	base := "/sessions/" + id

	for _, typ := range []domain.NodeType{domain.NodeTypeStart, domain.NodeTypeForm, domain.NodeTypeAPI, domain.NodeTypeEnd} {
		addNode(t, h, id, typ)
	}
	connect(t, h, id, "start", "form_2")
	connect(t, h, id, "form_2", "api_3")
	connect(t, h, id, "api_3", "end_4")

	w := do(t, h, "PUT", base+"/nodes/form_2/form", FormRequest{
		Fields: []domain.FormField{{ID: "email", Name: "Email Address", Type: domain.FieldTypeEmail}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", base+"/nodes/api_3/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fields := decodeBody[map[string][]domain.FormField](t, w)["fields"]
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].ID)

	w = do(t, h, "POST", base+"/nodes/api_3/request-body/email", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[map[string]bool](t, w)["selected"])

	w = do(t, h, "POST", base+"/nodes/api_3/request-body/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "PUT", base+"/nodes/api_3/api", APIRequest{HTTPMethod: "GET", URL: "not a url"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errBody := decodeBody[ErrorResponse](t, w)
	assert.Contains(t, errBody.Fields, "url")
	assert.Contains(t, errBody.Fields, "httpMethod")

	w = do(t, h, "PUT", base+"/nodes/api_3/api", APIRequest{HTTPMethod: "post", URL: " https://example.com/signup "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	api := decodeBody[domain.Node](t, w)
	assert.Equal(t, domain.MethodPOST, api.Data.HTTPMethod)
	assert.Equal(t, "https://example.com/signup", api.Data.URL)
	assert.Equal(t, map[string]string{"email_address": "{{email_address}}"}, api.Data.RequestBody)

	w = do(t, h, "POST", base+"/save", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestEdgeAndNodeRemoval(t *testing.T) {
	h := newTestHandler(t)
	id := createSession(t, h)
	base := "/sessions/" + id

	addNode(t, h, id, domain.NodeTypeStart)
	addNode(t, h, id, domain.NodeTypeConditional)
	edge := connect(t, h, id, "start", "conditional_2")

	w := do(t, h, "PUT", base+"/nodes/conditional_2/position", domain.Position{X: 40, Y: 80})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "DELETE", base+"/edges/"+edge.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "DELETE", base+"/edges/"+edge.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "DELETE", base+"/nodes/conditional_2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "DELETE", base+"/nodes/conditional_2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", base+"/nodes", AddNodeRequest{Type: "loop"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", base+"/nodes", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestHandler(t)
	id := createSession(t, h)

	w := do(t, h, "GET", "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{id}, decodeBody[map[string][]string](t, w)["sessions"])

	addNode(t, h, id, domain.NodeTypeStart)
	do(t, h, "POST", "/sessions/"+id+"/nodes", AddNodeRequest{Type: domain.NodeTypeStart})
	w = do(t, h, "DELETE", "/sessions/"+id+"/errors", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, decodeBody[SessionResponse](t, do(t, h, "GET", "/sessions/"+id, nil)).Errors)

	w = do(t, h, "DELETE", "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, "DELETE", "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Reading an id that was never saved does not open it.
	w = do(t, h, "GET", "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, "GET", "/sessions/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, "GET", "/sessions", nil)
	assert.Empty(t, decodeBody[map[string][]string](t, w)["sessions"])
}

func signupJSON(t *testing.T, withFields bool) string {
	t.Helper()
	b := dsl.New()
	b.Add("start").Start().Go("form")
	form := b.Add("form").Form()
	if withFields {
		form.RequiredField("Email", domain.FieldTypeEmail)
	}
	form.Go("end")
	b.Add("end").End()
	doc, err := b.Build()
	require.NoError(t, err)
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

func TestPostValidate(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/validate", signupJSON(t, true))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeBody[ValidationResponse](t, w)
	assert.True(t, res.Valid)
	assert.Equal(t, "valid", string(res.Phase))
	require.Len(t, res.CompletePaths, 1)
	assert.Equal(t, []string{"start", "form", "end"}, []string(res.CompletePaths[0]))
	assert.Equal(t, map[string]bool{"start": false, "form": true, "end": false}, res.Deletable)

	w = do(t, h, "POST", "/validate", signupJSON(t, false))
	require.Equal(t, http.StatusOK, w.Code)
	res = decodeBody[ValidationResponse](t, w)
	assert.False(t, res.Valid)
	require.NotNil(t, res.Error)
	assert.Equal(t, domain.MsgFormNeedsFields, res.Error.Error)
}

func TestPostValidate_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: "{"},
		{name: "missing edges", body: `{"nodes": []}`},
		{name: "node without id", body: `{"nodes": [{"type": "start"}], "edges": []}`},
		{name: "unknown node type", body: `{"nodes": [{"id": "x", "type": "loop"}], "edges": []}`},
		{name: "unknown field type", body: `{"nodes": [{"id": "f", "type": "form", "data": {"fields": [{"id": "f1", "name": "x", "type": "banana"}]}}], "edges": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", "/validate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestPostLint(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/lint", signupJSON(t, false))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, true, body["has_errors"])
	assert.NotEmpty(t, body["issues"])
}
