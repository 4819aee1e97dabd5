package graph

import "github.com/aretw0/blockflow/pkg/domain"

// Direction selects which end of an edge the traversal follows.
type Direction int

const (
	// Forward follows edges whose source is the current node.
	Forward Direction = iota
	// Backward follows edges whose target is the current node.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Path is an ordered sequence of node ids, always written source-first.
type Path []string

// Contains reports whether id appears on the path.
func (p Path) Contains(id string) bool {
	for _, v := range p {
		if v == id {
			return true
		}
	}
	return false
}

type options struct {
	exhaustive bool
	maxDepth   int
}

// Option configures a traversal.
type Option func(*options)

// DefaultMaxDepth bounds exhaustive enumeration when no explicit depth is given.
const DefaultMaxDepth = 64

// WithExhaustive enumerates every simple terminal path instead of the first one
// discovered per node. A node may be re-entered from a different ancestor but never
// twice on the same path. Paths longer than maxDepth nodes are abandoned.
func WithExhaustive(maxDepth int) Option {
	return func(o *options) {
		o.exhaustive = true
		o.maxDepth = maxDepth
		if o.maxDepth <= 0 {
			o.maxDepth = DefaultMaxDepth
		}
	}
}

type frame struct {
	nodeID string
	path   Path
}

// EnumeratePaths walks the edge list depth-first from startID and returns every
// terminal path found. A path is terminal when its last node has no edges in the
// traversal direction.
//
// By default a node is expanded at most once per call, so a node reachable through
// two routes only contributes the first route discovered.
func EnumeratePaths(startID string, edges []domain.Edge, dir Direction, opts ...Option) []Path {
	if startID == "" || len(edges) == 0 {
		return nil
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	adj := adjacency(edges, dir)
	if o.exhaustive {
		return enumerateSimplePaths(startID, adj, dir, o.maxDepth)
	}

	var paths []Path
	visited := make(map[string]bool)
	stack := []frame{{nodeID: startID, path: Path{startID}}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[cur.nodeID] {
			continue
		}
		visited[cur.nodeID] = true

		next := adj[cur.nodeID]
		if len(next) == 0 {
			paths = append(paths, cur.path)
			continue
		}

		for _, id := range next {
			if !visited[id] {
				stack = append(stack, frame{nodeID: id, path: extend(cur.path, id, dir)})
			}
		}
	}

	return paths
}

func enumerateSimplePaths(startID string, adj map[string][]string, dir Direction, maxDepth int) []Path {
	var paths []Path
	stack := []frame{{nodeID: startID, path: Path{startID}}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next := adj[cur.nodeID]
		if len(next) == 0 {
			paths = append(paths, cur.path)
			continue
		}
		if len(cur.path) >= maxDepth {
			continue
		}

		for _, id := range next {
			if !cur.path.Contains(id) {
				stack = append(stack, frame{nodeID: id, path: extend(cur.path, id, dir)})
			}
		}
	}

	return paths
}

// adjacency indexes neighbours per node in edge-list order.
func adjacency(edges []domain.Edge, dir Direction) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		if dir == Backward {
			adj[e.Target] = append(adj[e.Target], e.Source)
		} else {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}
	return adj
}

// extend returns a new path with id added: appended going forward,
// prepended going backward, so paths always read source-first.
func extend(p Path, id string, dir Direction) Path {
	out := make(Path, 0, len(p)+1)
	if dir == Backward {
		out = append(out, id)
		return append(out, p...)
	}
	out = append(out, p...)
	return append(out, id)
}

// Flatten concatenates paths into a single id list, keeping the first
// occurrence of each id.
func Flatten(paths []Path) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		for _, id := range p {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Reachable returns every node reachable from startID (startID included),
// breadth-first. Unlike EnumeratePaths it also reports nodes that only sit on
// cycles with no terminal exit.
func Reachable(startID string, edges []domain.Edge, dir Direction) map[string]bool {
	adj := adjacency(edges, dir)
	visited := map[string]bool{}
	queue := []string{startID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		queue = append(queue, adj[cur]...)
	}
	return visited
}
