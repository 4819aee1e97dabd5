package domain

import "errors"

// ErrWorkflowNotFound is returned when a saved workflow cannot be found in the store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrNodeNotFound is returned when an operation references an unknown node.
var ErrNodeNotFound = errors.New("node not found")

// ErrEdgeNotFound is returned when an operation references an unknown edge.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrNodeNotDeletable is returned when removing the node would break the only complete path.
var ErrNodeNotDeletable = errors.New("node is not deletable")

// ErrCardinality is returned when inserting a second start or end block.
var ErrCardinality = errors.New("block cardinality exceeded")

// ErrInvalidNodeType is returned for block types outside the palette.
var ErrInvalidNodeType = errors.New("invalid node type")

// ErrFieldNotAvailable is returned when an API block references a field no upstream form offers.
var ErrFieldNotAvailable = errors.New("field not available upstream")
