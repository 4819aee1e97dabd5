package graph

import "github.com/aretw0/blockflow/pkg/domain"

// UpstreamForms returns the form nodes found walking backward from nodeID,
// in discovery order, each at most once.
func UpstreamForms(nodeID string, g domain.Graph, opts ...Option) []domain.Node {
	if len(g.Incoming(nodeID)) == 0 {
		return nil
	}

	var forms []domain.Node
	for _, id := range Flatten(EnumeratePaths(nodeID, g.Edges, Backward, opts...)) {
		if id == nodeID {
			continue
		}
		n, ok := g.Node(id)
		if ok && n.Type == domain.NodeTypeForm {
			forms = append(forms, n)
		}
	}
	return forms
}

// AvailableFields collects the fields of every form reachable upstream of
// apiNodeID. These are the candidates offered for the API request body.
func AvailableFields(apiNodeID string, g domain.Graph, opts ...Option) []domain.FormField {
	var fields []domain.FormField
	for _, form := range UpstreamForms(apiNodeID, g, opts...) {
		fields = append(fields, form.Data.Fields...)
	}
	return fields
}

// FindField returns the upstream field with the given id.
func FindField(apiNodeID, fieldID string, g domain.Graph, opts ...Option) (domain.FormField, bool) {
	for _, f := range AvailableFields(apiNodeID, g, opts...) {
		if f.ID == fieldID {
			return f, true
		}
	}
	return domain.FormField{}, false
}
