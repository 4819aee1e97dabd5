package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/blockflow/pkg/adapters/redis"
	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/aretw0/blockflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunWorkflowStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:wf:"))

	err := store.Save(context.Background(), "wf-1", &domain.Document{Metadata: domain.Metadata{Name: "x"}})
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:wf:wf-1"))
	assert.True(t, mr.Exists("test:wf:index"))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	err := store.Save(ctx, "wf-ttl", &domain.Document{Metadata: domain.Metadata{Name: "short lived"}})
	require.NoError(t, err)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "wf-ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "wf-ttl")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

	// The index is pruned lazily against wall-clock time.
	time.Sleep(2100 * time.Millisecond)

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
