package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventBlockAdded       EventType = "block_added"
	EventBlockRemoved     EventType = "block_removed"
	EventWorkflowSaved    EventType = "workflow_saved"
	EventWorkflowRejected EventType = "workflow_rejected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	WorkflowID string    `json:"workflow_id"`
}

// NodeEvent reports a block entering or leaving the canvas.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeType NodeType `json:"node_type"`
}

// SaveEvent reports the outcome of a save attempt.
// Category and Reason are only set for rejections.
type SaveEvent struct {
	EventBase
	Category string `json:"category,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
}

// LifecycleHooks defines callbacks for editor observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnBlockAdded   func(*NodeEvent)
	OnBlockRemoved func(*NodeEvent)
	OnSave         func(*SaveEvent)
}
