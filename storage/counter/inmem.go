package counter

import (
	"context"
	"sync"
	"time"

	"github.com/nexusalpri/academy/core/security"
)

var nowFunc = time.Now // mockable

type inmemCounter struct {
	count  int64
	expiry time.Time
}

// InMemStore is a process-local CounterStore. Only suitable for single process deployments & tests.
type InMemStore struct {
	mu       sync.Mutex
	counters map[string]*inmemCounter
}

var _ security.CounterStore = (*InMemStore)(nil) // interface compliance check

func NewInMemStore() *InMemStore {
	return &InMemStore{counters: make(map[string]*inmemCounter)}
}

// live returns key's counter if it has not expired. Caller must hold mu.
func (s *InMemStore) live(key string) (*inmemCounter, bool) {
	c, ok := s.counters[key]
	if !ok {
		return nil, false
	}
	if nowFunc().After(c.expiry) {
		delete(s.counters, key)
		return nil, false
	}
	return c, true
}

func (s *InMemStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.live(key); ok {
		return c.count, nil
	}
	return 0, nil
}

func (s *InMemStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.live(key)
	if !ok {
		c = &inmemCounter{expiry: nowFunc().Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, nil
}

func (s *InMemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
	return nil
}
