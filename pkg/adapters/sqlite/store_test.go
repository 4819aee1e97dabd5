package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/blockflow/pkg/adapters/sqlite"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunWorkflowStoreContract(t, newTestStore(t, ":memory:"))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows.db")
	ctx := context.Background()

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "wf-1", &domain.Document{Metadata: domain.Metadata{Name: "kept"}}))
	require.NoError(t, first.Close())

	second := newTestStore(t, path)
	doc, err := second.Load(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "kept", doc.Metadata.Name)
}

func TestSQLiteStore_ListEmpty(t *testing.T) {
	ids, err := newTestStore(t, ":memory:").List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
