package domain

// DeletableDiff holds the deletable flags that changed after a re-validation pass.
// It maps node id to the new flag value.
type DeletableDiff map[string]bool

// DiffDeletable compares the current node flags with the freshly computed ones.
// It returns nil when nothing changed, so callers can skip the write-back entirely.
// Nodes missing from next are treated as deletable.
func DiffDeletable(nodes []Node, next map[string]bool) DeletableDiff {
	diff := make(DeletableDiff)
	for _, n := range nodes {
		want, ok := next[n.ID]
		if !ok {
			want = true
		}
		if n.Deletable != want {
			diff[n.ID] = want
		}
	}

	if len(diff) == 0 {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d DeletableDiff) IsEmpty() bool {
	return len(d) == 0
}

// ApplyDeletable returns a new node slice with the diff applied.
// The input slice is never modified; unchanged nodes are copied as-is.
func ApplyDeletable(nodes []Node, diff DeletableDiff) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		if v, ok := diff[out[i].ID]; ok {
			out[i].Deletable = v
		}
	}
	return out
}
