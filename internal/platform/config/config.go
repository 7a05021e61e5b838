package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Engine names accepted by FAIRDASH_ENGINE.
const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel string
	// LogFormat is "json" or "text".
	LogFormat string

	Dataset   Dataset
	Redis     RedisConfig
	Kafka     KafkaConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// Dataset describes where the fairness rows come from and how they are queried.
type Dataset struct {
	// Path is a local file path or an s3://bucket/key URL. Unused by the postgres engine.
	Path         string
	Engine       string
	DatabaseURL  string
	Table        string
	QueryTimeout time.Duration
	AWSRegion    string
	// CacheTTL bounds how long query results live in Redis. The dataset is
	// static so this only caps memory use.
	CacheTTL time.Duration
}

// RedisConfig configures the optional query result cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional usage-event sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SessionConfig bounds view-session lifetime and input coalescing.
type SessionConfig struct {
	TTL            time.Duration
	DebounceWindow time.Duration
	SweepInterval  time.Duration
}

// RateLimitConfig caps API requests per client IP.
type RateLimitConfig struct {
	Disabled bool
	Requests int
	Window   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:      envString("FAIRDASH_ADDR", ":8080"),
		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "json"),
		Dataset: Dataset{
			Path:         envString("FAIRDASH_DATA_PATH", "data/fairness.parquet"),
			Engine:       strings.ToLower(envString("FAIRDASH_ENGINE", EngineSQLite)),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			Table:        envString("FAIRDASH_TABLE", "fairness"),
			QueryTimeout: envDuration("FAIRDASH_QUERY_TIMEOUT", 5*time.Second),
			AWSRegion:    os.Getenv("AWS_REGION"),
			CacheTTL:     envDuration("FAIRDASH_CACHE_TTL", time.Hour),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envString("FAIRDASH_EVENTS_TOPIC", "fairdash.usage"),
		},
		Session: SessionConfig{
			TTL:            envDuration("FAIRDASH_SESSION_TTL", 30*time.Minute),
			DebounceWindow: envDuration("FAIRDASH_DEBOUNCE", 100*time.Millisecond),
			SweepInterval:  envDuration("FAIRDASH_SESSION_SWEEP", time.Minute),
		},
		RateLimit: RateLimitConfig{
			Disabled: envBool("FAIRDASH_RATELIMIT_DISABLED", false),
			Requests: envInt("FAIRDASH_RATELIMIT_REQUESTS", 300),
			Window:   envDuration("FAIRDASH_RATELIMIT_WINDOW", time.Minute),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
