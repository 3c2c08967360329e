package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/stockwise-ai/stockwise-backend/api/responses"
	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	pkgerrors "github.com/stockwise-ai/stockwise-backend/pkg/errors"
	"github.com/stockwise-ai/stockwise-backend/pkg/logger"
	"github.com/stockwise-ai/stockwise-backend/pkg/metrics"
)

// windowStore is the sliding-window counter backing the rate gate.
type windowStore interface {
	SlidingWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit gates the pipeline per caller identity: authenticated
// client id when present, source IP otherwise. The store failing open
// would hide abuse, so store errors reject the request.
func RateLimit(cfg config.RateLimitConfig, store windowStore, m *metrics.PipelineMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.Requests <= 0 || cfg.Window <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			scope := ClientIDFromContext(ctx)
			if scope == "" {
				scope = ClientIP(r)
			}

			allowed, count, err := store.SlidingWindowAllow(ctx, scope, int64(cfg.Requests), cfg.Window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				m.IncRateLimited()
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"scope":          scope,
						"attempts":       count,
						"limit":          cfg.Requests,
						"window_seconds": int(cfg.Window.Seconds()),
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
