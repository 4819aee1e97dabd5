/*
Package graph implements the read-only algorithms behind the workflow editor.

All functions take plain node/edge data (usually a domain.Graph snapshot) and return
derived values; nothing here mutates its input.

# Components

  - Traversal: EnumeratePaths walks edges depth-first, forward or backward.
  - Classification: IsComplete / Classify decide whether a path set contains a
    start-to-end route through at least one other block.
  - Deletion policy: CanDelete protects the start and end blocks of a complete path;
    Revalidate applies the resulting flags diff-then-apply.
  - Field resolution: AvailableFields collects Form fields reachable upstream of a node.

Block kinds are read from the declared node type (ByDeclaredType). ByIDPrefix keeps
the old id-prefix convention available for callers that only hold edges.
*/
package graph
