package graph

import (
	"strings"

	"github.com/aretw0/blockflow/pkg/domain"
)

// TypeResolver reports the block type of a node id.
// ok is false when the id does not refer to a known node.
type TypeResolver func(id string) (t domain.NodeType, ok bool)

// ByDeclaredType resolves ids through the nodes' declared type field.
func ByDeclaredType(nodes []domain.Node) TypeResolver {
	types := make(map[string]domain.NodeType, len(nodes))
	for _, n := range nodes {
		types[n.ID] = n.Type
	}
	return func(id string) (domain.NodeType, bool) {
		t, ok := types[id]
		return t, ok
	}
}

// ByIDPrefix resolves ids by their prefix, the legacy convention where generated
// ids start with the block type ("start", "form_2", "api_3"). It misreads user-chosen
// ids such as "starting-point" and exists only for callers that hold edges alone.
func ByIDPrefix() TypeResolver {
	return func(id string) (domain.NodeType, bool) {
		for _, t := range domain.NodeTypes {
			if strings.HasPrefix(id, string(t)) {
				return t, true
			}
		}
		return "", false
	}
}

// Verdict is the aggregate classification of a path set.
type Verdict struct {
	// IsValid is true when no complete path exists, meaning the node the
	// paths were enumerated from may be deleted.
	IsValid bool
}

// IsComplete reports whether the path holds a start node, an end node, and at
// least one node that is neither. Ids unknown to the resolver count toward none.
func IsComplete(p Path, resolve TypeResolver) bool {
	var hasStart, hasEnd, hasOther bool
	for _, id := range p {
		t, ok := resolve(id)
		if !ok {
			continue
		}
		switch t {
		case domain.NodeTypeStart:
			hasStart = true
		case domain.NodeTypeEnd:
			hasEnd = true
		default:
			hasOther = true
		}
	}
	return hasStart && hasEnd && hasOther
}

// Classify returns a deletable verdict: false as soon as any path is complete,
// true for an empty path set.
func Classify(paths []Path, resolve TypeResolver) Verdict {
	for _, p := range paths {
		if IsComplete(p, resolve) {
			return Verdict{IsValid: false}
		}
	}
	return Verdict{IsValid: true}
}

// CompletePaths filters paths down to the complete ones, preserving order.
func CompletePaths(paths []Path, resolve TypeResolver) []Path {
	var out []Path
	for _, p := range paths {
		if IsComplete(p, resolve) {
			out = append(out, p)
		}
	}
	return out
}
