package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockwise-ai/stockwise-backend/api/controllers"
	"github.com/stockwise-ai/stockwise-backend/api/middleware"
	"github.com/stockwise-ai/stockwise-backend/internal/apikeys"
	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	"github.com/stockwise-ai/stockwise-backend/pkg/logger"
	"github.com/stockwise-ai/stockwise-backend/pkg/metrics"
	"github.com/stockwise-ai/stockwise-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Fields left nil are
// degraded gracefully: a nil redis client disables rate limiting, a nil
// gatherer disables /metrics.
type Deps struct {
	Assistant    controllers.QueryService
	Keys         apikeys.Verifier
	AuthRequired bool
	Redis        *redis.Client
	Metrics      *metrics.PipelineMetrics
	Gatherer     prometheus.Gatherer
	Health       map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/assistant", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthOptions{
			StaticKey: cfg.Auth.APIKey,
			Keys:      deps.Keys,
			JWT:       cfg.JWT,
			Required:  deps.AuthRequired,
		}, logg))
		if deps.Redis != nil {
			r.Use(middleware.RateLimit(cfg.RateLimit, deps.Redis, deps.Metrics, logg))
		}
		r.Post("/query", controllers.AssistantQuery(deps.Assistant, cfg.Assistant.MaxQueryLen, logg))
	})

	return r
}
