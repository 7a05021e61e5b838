package middleware

import (
	"context"
	"log/slog"
	"time"

	"fairdash/internal/ratelimit/models"
	"fairdash/pkg/platform/circuit"
)

// Store counts requests in sliding windows.
type Store interface {
	AllowN(ctx context.Context, key string, cost int, limit int, window time.Duration) (*models.Result, error)
}

// Limiter checks the primary store and falls back to a local store while the
// primary is failing. A nil primary means local limits only.
type Limiter struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewLimiter(primary, fallback Store, logger *slog.Logger) *Limiter {
	return &Limiter{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("ratelimit-primary"),
		logger:   logger,
	}
}

// Allow checks key against policy. Degraded is true when the answer came from
// the fallback store although a primary is configured.
func (l *Limiter) Allow(ctx context.Context, key string, policy models.Policy) (res *models.Result, degraded bool, err error) {
	if l.primary != nil {
		res, err := l.primary.AllowN(ctx, key, 1, policy.Limit, policy.Window)
		if err == nil {
			if _, change := l.breaker.RecordSuccess(); change.Closed {
				l.logger.InfoContext(ctx, "rate limit store recovered")
			}
			if !l.breaker.IsOpen() {
				return res, false, nil
			}
		} else if _, change := l.breaker.RecordFailure(); change.Opened {
			l.logger.WarnContext(ctx, "rate limit store failing, using local limits", "error", err)
		}
	}
	res, err = l.fallback.AllowN(ctx, key, 1, policy.Limit, policy.Window)
	return res, l.primary != nil, err
}
