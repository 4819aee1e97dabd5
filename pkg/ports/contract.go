package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractDocument() *domain.Document {
	return &domain.Document{
		Nodes: []domain.NodeRecord{
			{ID: "start", Type: domain.NodeTypeStart, Position: domain.Position{X: 0, Y: 0}, Data: domain.NodeData{Label: "Start"}},
			{ID: "form_2", Type: domain.NodeTypeForm, Position: domain.Position{X: 120, Y: 40.5}, Data: domain.NodeData{
				Label:      "New Node",
				CustomName: "Signup",
				Fields:     []domain.FormField{{ID: "f1", Name: "Email", Type: domain.FieldTypeEmail, Required: true}},
			}},
			{ID: "api_3", Type: domain.NodeTypeAPI, Position: domain.Position{X: 240, Y: 40}, Data: domain.NodeData{
				Label:       "New Node",
				HTTPMethod:  domain.MethodPOST,
				URL:         "https://api.example.com/signup",
				RequestBody: map[string]string{"email": "{{email}}"},
			}},
			{ID: "end_4", Type: domain.NodeTypeEnd, Position: domain.Position{X: 360, Y: 0}, Data: domain.NodeData{Label: "End"}},
		},
		Edges: []domain.Edge{
			{ID: "xy-edge__start-form_2", Source: "start", Target: "form_2"},
			{ID: "xy-edge__form_2-api_3", Source: "form_2", Target: "api_3", Label: "submit"},
			{ID: "xy-edge__api_3-end_4", Source: "api_3", Target: "end_4"},
		},
		Metadata: domain.Metadata{
			Name:    domain.DefaultWorkflowName,
			Version: domain.DefaultWorkflowVersion,
			Created: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		},
	}
}

// RunWorkflowStoreContract runs a suite of tests to verify that a WorkflowStore
// implementation adheres to the defined interface contract.
func RunWorkflowStoreContract(t *testing.T, store WorkflowStore) {
	ctx := context.Background()
	workflowID := "contract-test-workflow-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDocument()

		err := store.Save(ctx, workflowID, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.Nodes, loaded.Nodes)
		assert.Equal(t, doc.Edges, loaded.Edges)
		assert.Equal(t, doc.Metadata.Name, loaded.Metadata.Name)
		assert.Equal(t, doc.Metadata.Version, loaded.Metadata.Version)
		assert.True(t, doc.Metadata.Created.Equal(loaded.Metadata.Created), "created timestamp should survive persistence")
	})

	t.Run("Save Replaces", func(t *testing.T) {
		doc := contractDocument()
		doc.Metadata.Version = "1.0.1"
		doc.Nodes = doc.Nodes[:1]

		require.NoError(t, store.Save(ctx, workflowID, doc))

		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		assert.Equal(t, "1.0.1", loaded.Metadata.Version)
		assert.Len(t, loaded.Nodes, 1)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, workflowID, contractDocument()))

		first, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		first.Nodes[1].Data.Fields[0].Name = "mutated"

		second, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		assert.Equal(t, "Email", second.Nodes[1].Data.Fields[0].Name, "callers must not share stored state")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, workflowID, contractDocument()))

		err := store.Delete(ctx, workflowID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound, "Load after Delete should return ErrWorkflowNotFound")

		assert.NoError(t, store.Delete(ctx, workflowID), "deleting twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := workflowID + "-1"
		id2 := workflowID + "-2"
		_ = store.Save(ctx, id1, contractDocument())
		_ = store.Save(ctx, id2, contractDocument())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunLockerContract verifies mutual exclusion and release for a DistributedLocker.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("20060102150405")

	t.Run("Exclusive", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded, "second Lock should block until the context expires")

		require.NoError(t, unlock(ctx))
	})

	t.Run("Reacquire After Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))

		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		unlock, err = locker.Lock(waitCtx, key, 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, unlock(ctx))
	})
}
