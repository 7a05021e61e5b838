package bucket

import (
	"context"
	"sync"
	"time"

	"fairdash/internal/ratelimit/models"
)

// InMemoryBucketStore keeps one sliding window per key in process memory.
// Limits are per instance; it also serves as the fallback when Redis fails.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
	now     func() time.Time
}

// slidingWindow tracks request timestamps inside the window.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// NewInMemoryBucketStore creates a new in-memory bucket store.
func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

// Allow checks if a request is allowed and counts it.
func (s *InMemoryBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

// AllowN checks if a request with custom cost is allowed.
func (s *InMemoryBucketStore) AllowN(_ context.Context, key string, cost int, limit int, window time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cw := s.getOrCreateBucket(key, window)
	cw.cleanup(now)
	count := len(cw.timestamps)

	if count+cost <= limit {
		for range cost {
			cw.timestamps = append(cw.timestamps, now)
		}
		resetAt := now.Add(window)
		if len(cw.timestamps) > 0 {
			resetAt = cw.timestamps[0].Add(window)
		}
		return &models.Result{
			Allowed:   true,
			Remaining: limit - len(cw.timestamps),
			ResetAt:   resetAt,
			Limit:     limit,
		}, nil
	}

	resetAt := now.Add(window)
	if len(cw.timestamps) > 0 {
		resetAt = cw.timestamps[0].Add(window)
	}
	return &models.Result{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(now, resetAt),
	}, nil
}

// Reset clears the counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// GetCurrentCount returns the current request count for a key.
func (s *InMemoryBucketStore) GetCurrentCount(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cw := s.buckets[key]
	if cw == nil {
		return 0, nil
	}
	cw.cleanup(s.now())
	return len(cw.timestamps), nil
}

// Sweep drops windows with no requests left in them.
func (s *InMemoryBucketStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, cw := range s.buckets {
		cw.cleanup(now)
		if len(cw.timestamps) == 0 {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// cleanup removes expired timestamps from a sliding window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// getOrCreateBucket returns an existing bucket or creates a new one.
// Must be called while holding s.mu.
func (s *InMemoryBucketStore) getOrCreateBucket(key string, window time.Duration) *slidingWindow {
	if cw := s.buckets[key]; cw != nil {
		return cw
	}
	cw := &slidingWindow{timestamps: []time.Time{}, window: window}
	s.buckets[key] = cw
	return cw
}
