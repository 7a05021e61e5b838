package events

import (
	"context"
	"sync"
)

// InMemoryStore keeps the most recent events up to a capacity, dropping the
// oldest first.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	dropped  int64
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = 10000
	}
	return &InMemoryStore{capacity: capacity}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) >= s.capacity {
		s.events = s.events[1:]
		s.dropped++
	}
	s.events = append(s.events, event)
	return nil
}

// ListBySession returns the events of one session in arrival order.
func (s *InMemoryStore) ListBySession(_ context.Context, sessionID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns up to limit of the newest events, oldest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.events) - limit
	if start < 0 || limit <= 0 {
		start = 0
	}
	return append([]Event{}, s.events[start:]...), nil
}

func (s *InMemoryStore) Dropped() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
