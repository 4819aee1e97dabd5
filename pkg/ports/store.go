package ports

import (
	"context"

	"github.com/aretw0/blockflow/pkg/domain"
)

// WorkflowStore defines how saved workflow documents are persisted.
type WorkflowStore interface {
	// Save persists the document under the given workflow ID, replacing any previous version.
	Save(ctx context.Context, workflowID string, doc *domain.Document) error

	// Load retrieves the document for a given workflow ID.
	// Returns domain.ErrWorkflowNotFound if nothing was saved under that ID.
	Load(ctx context.Context, workflowID string) (*domain.Document, error)

	// Delete removes the document. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, workflowID string) error

	// List returns the IDs of all saved workflows.
	List(ctx context.Context) ([]string, error)
}
