package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/churn-advisor/internal/adapters/redis"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.SequenceStore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := redis.NewWithClient(client, time.Minute)
	t.Cleanup(func() { store.Close() })
	return mr, store
}

func TestSequenceStoreOrdersSubmissions(t *testing.T) {
	ctx := context.Background()
	_, store := setupRedis(t)

	first, err := store.Begin(ctx, "tab-a")
	require.NoError(t, err)
	second, err := store.Begin(ctx, "tab-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)

	latest, err := store.IsLatest(ctx, "tab-a", first)
	require.NoError(t, err)
	assert.False(t, latest)

	latest, err = store.IsLatest(ctx, "tab-a", second)
	require.NoError(t, err)
	assert.True(t, latest)

	other, err := store.Begin(ctx, "tab-b")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), other)
}

func TestSequenceStoreSetsTTL(t *testing.T) {
	ctx := context.Background()
	mr, store := setupRedis(t)

	_, err := store.Begin(ctx, "tab-a")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("churn:seq:tab-a"))
}

func TestSequenceStoreExpiredCounterIsLatest(t *testing.T) {
	ctx := context.Background()
	mr, store := setupRedis(t)

	seq, err := store.Begin(ctx, "tab-a")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	latest, err := store.IsLatest(ctx, "tab-a", seq)
	require.NoError(t, err)
	assert.True(t, latest)
}

func TestNewFailsWithoutServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = redis.New(ctx, addr, "", 0)
	assert.Error(t, err)
}
