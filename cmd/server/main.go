package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"fairdash/internal/fairness/events"
	"fairdash/internal/fairness/handler"
	"fairdash/internal/fairness/metadata"
	fairnessmetrics "fairdash/internal/fairness/metrics"
	"fairdash/internal/fairness/service"
	"fairdash/internal/fairness/store/session"
	httpapi "fairdash/internal/http"
	"fairdash/internal/platform/config"
	"fairdash/internal/platform/httpserver"
	"fairdash/internal/platform/logger"
	"fairdash/internal/platform/metrics"
	"fairdash/internal/platform/redis"
	ratelimitmw "fairdash/internal/ratelimit/middleware"
	ratelimitmodels "fairdash/internal/ratelimit/models"
	"fairdash/internal/ratelimit/store/bucket"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)
	fairMetrics := fairnessmetrics.New(reg)

	engine, err := openEngine(ctx, cfg.Dataset, log)
	if err != nil {
		log.Error("failed to open query engine", "engine", cfg.Dataset.Engine, "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	health := map[string]httpapi.HealthCheck{
		"engine": func(ctx context.Context) error {
			_, err := engine.YearRange(ctx)
			return err
		},
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, query cache disabled", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		health["redis"] = redisClient.Health
		log.Info("query cache enabled", "ttl", cfg.Dataset.CacheTTL)
	}
	cached := withCache(engine, redisClient, cfg.Dataset.CacheTTL, cfg.Dataset.QueryTimeout, log, fairMetrics)

	md, err := metadata.Build(ctx, cached)
	if err != nil {
		log.Error("failed to read dataset metadata", "error", err)
		os.Exit(1)
	}

	var sink events.Sink = events.NewInMemoryStore(0)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, events.WithKafkaLogger(log))
		if err != nil {
			log.Warn("kafka unavailable, usage events kept in memory", "error", err)
		} else {
			defer kafkaSink.Close(context.Background())
			sink = kafkaSink
			log.Info("usage events published to kafka", "topic", cfg.Kafka.Topic)
		}
	}
	publisher := events.NewPublisher(sink, events.WithAsyncBuffer(1024), events.WithPublisherLogger(log))
	defer publisher.Close()

	svc, err := service.New(cached, md,
		service.WithLogger(log),
		service.WithMetrics(fairMetrics),
		service.WithPublisher(publisher),
		service.WithSessionStore(session.NewInMemoryStore(cfg.Session.TTL)),
		service.WithQueryTimeout(cfg.Dataset.QueryTimeout),
		service.WithDebounceWindow(cfg.Session.DebounceWindow),
	)
	if err != nil {
		log.Error("failed to build service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()
	go svc.RunSweeper(ctx, cfg.Session.SweepInterval)

	var primary ratelimitmw.Store
	if redisClient != nil {
		primary = bucket.NewRedis(redisClient)
	}
	local := bucket.NewInMemoryBucketStore()
	go sweepBuckets(ctx, local, cfg.RateLimit.Window)
	limiter := ratelimitmw.NewLimiter(primary, local, log)
	rateLimit := ratelimitmw.New(limiter, log, ratelimitmw.WithDisabled(cfg.RateLimit.Disabled)).
		RateLimit("api", ratelimitmodels.Policy{Limit: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window})

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Metrics:   httpMetrics,
		Gatherer:  reg,
		Health:    health,
		RateLimit: rateLimit,
		Handlers:  []httpapi.Registrar{handler.New(svc, log)},
	})
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting fairdash", "addr", cfg.Addr, "engine", cfg.Dataset.Engine)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// sweepBuckets drops idle local rate limit windows until ctx is done.
func sweepBuckets(ctx context.Context, store *bucket.InMemoryBucketStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep()
		}
	}
}
