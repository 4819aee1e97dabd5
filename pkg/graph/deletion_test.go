package graph

import (
	"testing"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanDelete_ThroughIntermediate(t *testing.T) {
	for _, mid := range []domain.NodeType{domain.NodeTypeForm, domain.NodeTypeConditional, domain.NodeTypeAPI} {
		t.Run(string(mid), func(t *testing.T) {
			ns := nodes("s", "start", "m", string(mid), "e", "end")
			es := edges("s", "m", "m", "e")
			resolve := ByDeclaredType(ns)

			assert.False(t, CanDelete("s", domain.NodeTypeStart, es, resolve))
			assert.False(t, CanDelete("e", domain.NodeTypeEnd, es, resolve))
			assert.True(t, CanDelete("m", mid, es, resolve))
		})
	}
}

func TestCanDelete_NoEdges(t *testing.T) {
	ns := nodes("s", "start", "f", "form", "a", "api", "c", "conditional", "e", "end")
	resolve := ByDeclaredType(ns)

	for _, n := range ns {
		assert.True(t, CanDelete(n.ID, n.Type, nil, resolve), "node %s", n.ID)
	}
}

func TestCanDelete_DirectStartToEnd(t *testing.T) {
	ns := nodes("s", "start", "e", "end")
	es := edges("s", "e")
	resolve := ByDeclaredType(ns)

	assert.True(t, CanDelete("s", domain.NodeTypeStart, es, resolve))
	assert.True(t, CanDelete("e", domain.NodeTypeEnd, es, resolve))
}

func TestCanDelete_DanglingBranch(t *testing.T) {
	// A complete path exists, plus a dead-end branch off the start.
	ns := nodes("s", "start", "f", "form", "x", "form", "e", "end")
	es := edges("s", "x", "s", "f", "f", "e")
	resolve := ByDeclaredType(ns)

	assert.False(t, CanDelete("s", domain.NodeTypeStart, es, resolve))
	assert.False(t, CanDelete("e", domain.NodeTypeEnd, es, resolve))
}

func TestRevalidate_DiffThenApply(t *testing.T) {
	g := domain.Graph{
		Nodes: nodes("s", "start", "f", "form", "e", "end"),
		Edges: edges("s", "f", "f", "e"),
	}

	flags := DeletableFlags(g)
	assert.Equal(t, map[string]bool{"s": false, "f": true, "e": false}, flags)

	next, changed := Revalidate(g)
	require.True(t, changed)
	assert.True(t, next[1].Deletable)
	assert.False(t, g.Nodes[1].Deletable, "input graph is not mutated")

	g.Nodes = next
	again, changed := Revalidate(g)
	assert.False(t, changed, "second pass has nothing to write back")
	assert.Equal(t, next, again)
}
