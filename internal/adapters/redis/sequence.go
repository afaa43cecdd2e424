// Package redis shares result container sequence numbers between server
// replicas.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "churn:seq:"
	// DefaultTTL is how long an idle container's counter is kept.
	DefaultTTL = 30 * time.Minute
)

type SequenceStore struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to addr. The connection is checked with PING.
func New(ctx context.Context, addr, password string, db int) (*SequenceStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewWithClient(rdb, DefaultTTL), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration) *SequenceStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SequenceStore{client: client, ttl: ttl}
}

func (s *SequenceStore) Begin(ctx context.Context, container string) (uint64, error) {
	key := keyPrefix + container
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("begin sequence: %w", err)
	}
	return uint64(incr.Val()), nil
}

func (s *SequenceStore) IsLatest(ctx context.Context, container string, seq uint64) (bool, error) {
	latest, err := s.client.Get(ctx, keyPrefix+container).Uint64()
	if errors.Is(err, redis.Nil) {
		// Expired while the prediction was in flight; nothing newer exists.
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read sequence: %w", err)
	}
	return latest == seq, nil
}

func (s *SequenceStore) Close() error {
	return s.client.Close()
}
