// Package memory holds in-process adapters.
package memory

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long an idle container's counter is kept.
const DefaultTTL = 30 * time.Minute

type counter struct {
	seq     uint64
	touched time.Time
}

// SequenceStore keeps result container sequence numbers in process memory.
// It is the default when no shared store is configured. Counters idle for
// longer than the TTL are dropped on a later Begin.
type SequenceStore struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	latest map[string]*counter
	swept  time.Time
}

type Option func(*SequenceStore)

// WithTTL sets the idle lifetime of a counter. Zero or less keeps counters forever.
func WithTTL(d time.Duration) Option {
	return func(s *SequenceStore) { s.ttl = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *SequenceStore) { s.now = now }
}

func NewSequenceStore(opts ...Option) *SequenceStore {
	s := &SequenceStore{
		ttl:    DefaultTTL,
		now:    time.Now,
		latest: make(map[string]*counter),
	}
	for _, o := range opts {
		o(s)
	}
	s.swept = s.now()
	return s
}

func (s *SequenceStore) Begin(_ context.Context, container string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	c := s.latest[container]
	if c == nil {
		c = &counter{}
		s.latest[container] = c
	}
	c.seq++
	c.touched = now
	return c.seq, nil
}

// IsLatest reports whether seq is the newest submission for container. A
// container with no counter (never begun or evicted) has nothing newer.
func (s *SequenceStore) IsLatest(_ context.Context, container string, seq uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.latest[container]
	if c == nil {
		return true, nil
	}
	return c.seq == seq, nil
}

// Len returns the number of counters held.
func (s *SequenceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latest)
}

// sweep drops idle counters, at most once per half TTL. Callers hold s.mu.
func (s *SequenceStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.swept) < s.ttl/2 {
		return
	}
	s.swept = now
	for k, c := range s.latest {
		if now.Sub(c.touched) > s.ttl {
			delete(s.latest, k)
		}
	}
}
