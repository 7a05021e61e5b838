// Package cache decorates an Engine with a Redis-backed result cache.
//
// The dataset is static, so a cached result never goes stale; the TTL only
// bounds memory. Redis is optional at runtime: when it misbehaves a circuit
// breaker routes queries straight to the engine until Redis recovers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"fairdash/internal/fairness/metrics"
	"fairdash/internal/fairness/models"
	"fairdash/internal/fairness/ports"
	"fairdash/internal/fairness/query"
	"fairdash/pkg/platform/circuit"
)

// KeyPrefix namespaces query results in Redis.
const KeyPrefix = "fairness:q:"

// Client is the subset of go-redis used by the cache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Engine caches Query results of the wrapped engine. Metadata lookups pass
// through uncached; they run once at startup.
type Engine struct {
	next    ports.Engine
	client  Client
	ttl     time.Duration
	timeout time.Duration
	breaker *circuit.Breaker
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Engine)

func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithQueryTimeout bounds a shared engine call. It runs detached from the
// callers' cancellation, so it needs its own deadline.
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(e *Engine) {
		if b != nil {
			e.breaker = b
		}
	}
}

// New wraps next with a Redis cache.
func New(next ports.Engine, client Client, opts ...Option) *Engine {
	e := &Engine{
		next:    next,
		client:  client,
		ttl:     time.Hour,
		timeout: 5 * time.Second,
		breaker: circuit.New("redis-query-cache"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key returns the Redis key for q.
func Key(q query.Query) string {
	sum := sha256.Sum256([]byte(q.Key()))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// Query serves q from Redis when possible. Identical concurrent misses share
// one engine call; a caller that gives up does not cancel it for the others.
func (e *Engine) Query(ctx context.Context, q query.Query) ([]models.Row, error) {
	key := Key(q)
	if rows, ok := e.lookup(ctx, key); ok {
		return rows, nil
	}

	ch := e.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		rows, err := e.next.Query(shared, q)
		if err != nil {
			return nil, err
		}
		e.store(shared, key, rows)
		return rows, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rows := res.Val.([]models.Row)
		return append(make([]models.Row, 0, len(rows)), rows...), nil
	}
}

func (e *Engine) DistinctValues(ctx context.Context, column string, where ...models.Condition) ([]string, error) {
	return e.next.DistinctValues(ctx, column, where...)
}

func (e *Engine) YearRange(ctx context.Context) (models.YearRange, error) {
	return e.next.YearRange(ctx)
}

// Close closes the wrapped engine. The Redis client is owned by the caller.
func (e *Engine) Close() error {
	return e.next.Close()
}

func (e *Engine) lookup(ctx context.Context, key string) ([]models.Row, bool) {
	if e.breaker.IsOpen() {
		e.metrics.IncrementCacheBypassed()
		// Keep reading Redis so the breaker can close once it recovers.
		if err := e.client.Get(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
			e.recordFailure(ctx, err)
		} else {
			e.recordSuccess(ctx)
		}
		return nil, false
	}

	payload, err := e.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		e.recordSuccess(ctx)
		e.metrics.IncrementCacheMisses()
		return nil, false
	}
	if err != nil {
		e.recordFailure(ctx, err)
		return nil, false
	}
	e.recordSuccess(ctx)

	var rows []models.Row
	if err := json.Unmarshal(payload, &rows); err != nil {
		e.metrics.IncrementCacheErrors()
		if e.logger != nil {
			e.logger.WarnContext(ctx, "discarding undecodable cached result", "key", key, "error", err)
		}
		return nil, false
	}
	e.metrics.IncrementCacheHits()
	if rows == nil {
		rows = []models.Row{}
	}
	return rows, true
}

func (e *Engine) store(ctx context.Context, key string, rows []models.Row) {
	if e.breaker.IsOpen() {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		e.metrics.IncrementCacheErrors()
		return
	}
	if err := e.client.Set(ctx, key, payload, e.ttl).Err(); err != nil {
		e.recordFailure(ctx, err)
		return
	}
	e.recordSuccess(ctx)
}

func (e *Engine) recordFailure(ctx context.Context, err error) {
	e.metrics.IncrementCacheErrors()
	_, change := e.breaker.RecordFailure()
	if e.logger == nil {
		return
	}
	if change.Opened {
		e.logger.WarnContext(ctx, "query cache circuit opened, bypassing redis",
			"breaker", e.breaker.Name(),
			"error", err,
		)
		return
	}
	e.logger.DebugContext(ctx, "query cache redis error", "error", err)
}

func (e *Engine) recordSuccess(ctx context.Context) {
	_, change := e.breaker.RecordSuccess()
	if change.Closed && e.logger != nil {
		e.logger.InfoContext(ctx, "query cache circuit closed, redis recovered", "breaker", e.breaker.Name())
	}
}
