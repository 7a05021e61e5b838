package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"FAIRDASH_ADDR", "FAIRDASH_ENGINE", "FAIRDASH_DEBOUNCE", "KAFKA_BROKERS", "REDIS_URL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EngineSQLite, cfg.Dataset.Engine)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.DebounceWindow)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.URL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FAIRDASH_ADDR", ":9090")
	t.Setenv("FAIRDASH_ENGINE", "Postgres")
	t.Setenv("FAIRDASH_DEBOUNCE", "250ms")
	t.Setenv("FAIRDASH_QUERY_TIMEOUT", "not-a-duration")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("REDIS_POOL_SIZE", "x")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, EnginePostgres, cfg.Dataset.Engine)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.DebounceWindow)
	assert.Equal(t, 5*time.Second, cfg.Dataset.QueryTimeout, "invalid durations fall back")
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Redis.PoolSize, "invalid ints fall back")
}

func TestFromEnvRateLimit(t *testing.T) {
	t.Setenv("FAIRDASH_RATELIMIT_DISABLED", "true")
	t.Setenv("FAIRDASH_RATELIMIT_REQUESTS", "50")
	t.Setenv("FAIRDASH_RATELIMIT_WINDOW", "")

	cfg := FromEnv()

	assert.True(t, cfg.RateLimit.Disabled)
	assert.Equal(t, 50, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}
