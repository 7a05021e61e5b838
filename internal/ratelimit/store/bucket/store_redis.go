package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fairdash/internal/ratelimit/models"
)

// slidingWindowScript trims the window, admits the request when it fits and
// returns {allowed, count, reset_ms}. Scores are unix milliseconds.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count + cost <= limit then
	for i = 1, cost do
		redis.call('ZADD', key, now, member .. ':' .. i)
	end
	count = count + cost
	allowed = 1
end
redis.call('PEXPIRE', key, window)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
	reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// RedisBucketStore shares sliding windows across instances through Redis
// sorted sets.
type RedisBucketStore struct {
	client redis.Scripter
	now    func() time.Time
}

func NewRedis(client redis.Scripter) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

// AllowN checks if a request with custom cost is allowed and counts it.
func (s *RedisBucketStore) AllowN(ctx context.Context, key string, cost int, limit int, window time.Duration) (*models.Result, error) {
	now := s.now()
	raw, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		now.UnixMilli(), window.Milliseconds(), limit, cost, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(raw))
	}

	resetAt := time.UnixMilli(raw[2])
	res := &models.Result{
		Allowed:   raw[0] == 1,
		Limit:     limit,
		Remaining: max(limit-int(raw[1]), 0),
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		res.Remaining = 0
		res.RetryAfter = models.RetryAfterSeconds(now, resetAt)
	}
	return res, nil
}
