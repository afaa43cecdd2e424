package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/churn-advisor/internal/adapters/memory"
)

func TestSequenceStore(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSequenceStore()

	first, err := s.Begin(ctx, "tab-a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first)

	latest, _ := s.IsLatest(ctx, "tab-a", first)
	assert.True(t, latest)

	second, _ := s.Begin(ctx, "tab-a")
	assert.Equal(t, uint64(2), second)

	latest, _ = s.IsLatest(ctx, "tab-a", first)
	assert.False(t, latest, "older submission must be stale")
	latest, _ = s.IsLatest(ctx, "tab-a", second)
	assert.True(t, latest)

	other, _ := s.Begin(ctx, "tab-b")
	assert.Equal(t, uint64(1), other, "containers are independent")
}

func TestSequenceStoreConcurrentBegin(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSequenceStore()

	var wg sync.WaitGroup
	seen := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, _ := s.Begin(ctx, "shared")
			seen <- seq
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[uint64]bool{}
	for seq := range seen {
		unique[seq] = true
	}
	assert.Len(t, unique, 100)
	latest, _ := s.IsLatest(ctx, "shared", 100)
	assert.True(t, latest)
}

func TestSequenceStoreEvictsIdleContainers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := memory.NewSequenceStore(memory.WithClock(clock))

	s.Begin(ctx, "idle")
	s.Begin(ctx, "busy")
	require.Equal(t, 2, s.Len())

	now = now.Add(20 * time.Minute)
	seq, _ := s.Begin(ctx, "busy")
	assert.Equal(t, uint64(2), seq)
	assert.Equal(t, 2, s.Len(), "nothing is idle past the TTL yet")

	now = now.Add(20 * time.Minute)
	s.Begin(ctx, "fresh")
	assert.Equal(t, 2, s.Len(), "idle counter dropped, busy and fresh kept")

	latest, err := s.IsLatest(ctx, "idle", 1)
	require.NoError(t, err)
	assert.True(t, latest, "an evicted container has nothing newer")

	restarted, _ := s.Begin(ctx, "idle")
	assert.Equal(t, uint64(1), restarted)
}

func TestSequenceStoreZeroTTLKeepsCounters(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := memory.NewSequenceStore(memory.WithTTL(0), memory.WithClock(func() time.Time { return now }))

	s.Begin(ctx, "a")
	now = now.Add(24 * time.Hour)
	s.Begin(ctx, "b")
	assert.Equal(t, 2, s.Len())
}
