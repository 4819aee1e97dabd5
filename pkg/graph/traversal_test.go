package graph

import (
	"testing"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edges(pairs ...string) []domain.Edge {
	out := make([]domain.Edge, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.Edge{
			ID:     pairs[i] + "->" + pairs[i+1],
			Source: pairs[i],
			Target: pairs[i+1],
		})
	}
	return out
}

func assertNoRepeats(t *testing.T, paths []Path) {
	t.Helper()
	for _, p := range paths {
		seen := map[string]bool{}
		for _, id := range p {
			assert.False(t, seen[id], "node %q repeated in path %v", id, p)
			seen[id] = true
		}
	}
}

func TestEnumeratePaths_Linear(t *testing.T) {
	es := edges("start", "form", "form", "end")

	forward := EnumeratePaths("start", es, Forward)
	assert.Equal(t, []Path{{"start", "form", "end"}}, forward)

	// Backward paths are built source-first as well.
	backward := EnumeratePaths("end", es, Backward)
	assert.Equal(t, []Path{{"start", "form", "end"}}, backward)
}

func TestEnumeratePaths_EmptyInputs(t *testing.T) {
	assert.Empty(t, EnumeratePaths("", edges("a", "b"), Forward))
	assert.Empty(t, EnumeratePaths("a", nil, Forward))
}

func TestEnumeratePaths_NodeWithoutEdgesInDirection(t *testing.T) {
	// "a" has no incoming edges, so walking backward from it is terminal at once.
	paths := EnumeratePaths("a", edges("a", "b"), Backward)
	assert.Equal(t, []Path{{"a"}}, paths)
}

func TestEnumeratePaths_CycleTerminates(t *testing.T) {
	t.Run("Pure Cycle", func(t *testing.T) {
		paths := EnumeratePaths("A", edges("A", "B", "B", "A"), Forward)
		assert.Empty(t, paths, "a closed cycle has no terminal node")
	})

	t.Run("Cycle With Exit", func(t *testing.T) {
		paths := EnumeratePaths("A", edges("A", "B", "B", "A", "B", "C"), Forward)
		require.Len(t, paths, 1)
		assert.Equal(t, Path{"A", "B", "C"}, paths[0])
		assertNoRepeats(t, paths)
	})

	t.Run("Self Loop", func(t *testing.T) {
		paths := EnumeratePaths("A", edges("A", "A", "A", "B"), Forward)
		assert.Equal(t, []Path{{"A", "B"}}, paths)
	})
}

func TestEnumeratePaths_DiamondIsApproximate(t *testing.T) {
	es := edges("s", "a", "s", "b", "a", "e", "b", "e")

	// Each node is expanded once, so the shared suffix is only reported once.
	paths := EnumeratePaths("s", es, Forward)
	require.Len(t, paths, 1)
	assert.Equal(t, Path{"s", "b", "e"}, paths[0])
}

func TestEnumeratePaths_Exhaustive(t *testing.T) {
	t.Run("Diamond", func(t *testing.T) {
		es := edges("s", "a", "s", "b", "a", "e", "b", "e")
		paths := EnumeratePaths("s", es, Forward, WithExhaustive(0))
		assert.ElementsMatch(t, []Path{{"s", "a", "e"}, {"s", "b", "e"}}, paths)
	})

	t.Run("Cycle", func(t *testing.T) {
		es := edges("A", "B", "B", "A", "B", "C", "A", "C")
		paths := EnumeratePaths("A", es, Forward, WithExhaustive(10))
		assert.ElementsMatch(t, []Path{{"A", "B", "C"}, {"A", "C"}}, paths)
		assertNoRepeats(t, paths)
	})

	t.Run("Depth Bound", func(t *testing.T) {
		es := edges("n1", "n2", "n2", "n3", "n3", "n4", "n4", "n5")
		assert.Empty(t, EnumeratePaths("n1", es, Forward, WithExhaustive(3)))
		assert.Len(t, EnumeratePaths("n1", es, Forward, WithExhaustive(5)), 1)
	})

	t.Run("Backward", func(t *testing.T) {
		es := edges("s", "a", "s", "b", "a", "e", "b", "e")
		paths := EnumeratePaths("e", es, Backward, WithExhaustive(0))
		assert.ElementsMatch(t, []Path{{"s", "a", "e"}, {"s", "b", "e"}}, paths)
	})
}

func TestFlatten(t *testing.T) {
	got := Flatten([]Path{{"a", "b", "c"}, {"d", "b", "c"}})
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assert.Empty(t, Flatten(nil))
}

func TestReachable(t *testing.T) {
	es := edges("s", "a", "a", "b", "b", "a", "x", "s")

	got := Reachable("s", es, Forward)
	assert.Equal(t, map[string]bool{"s": true, "a": true, "b": true}, got)

	back := Reachable("s", es, Backward)
	assert.Equal(t, map[string]bool{"s": true, "x": true}, back)
}
