package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stockwise-ai/stockwise-backend/api/controllers"
	"github.com/stockwise-ai/stockwise-backend/api/routes"
	"github.com/stockwise-ai/stockwise-backend/internal/apikeys"
	"github.com/stockwise-ai/stockwise-backend/internal/assistant"
	"github.com/stockwise-ai/stockwise-backend/internal/catalog"
	"github.com/stockwise-ai/stockwise-backend/internal/trends"
	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	"github.com/stockwise-ai/stockwise-backend/pkg/db"
	"github.com/stockwise-ai/stockwise-backend/pkg/llm"
	"github.com/stockwise-ai/stockwise-backend/pkg/logger"
	"github.com/stockwise-ai/stockwise-backend/pkg/metrics"
	"github.com/stockwise-ai/stockwise-backend/pkg/migrate"
	"github.com/stockwise-ai/stockwise-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB(), dbClient.Driver())
	trendProvider := trends.NewProvider(
		trends.NewRepository(dbClient.DB()),
		trends.NewRedisCache(redisClient, cfg.Assistant.TrendCacheTTL),
		cfg.Assistant.TrendWindowDays,
	)

	assistantService := assistant.NewService(
		assistant.NewResolver(catalogRepo, cfg.Assistant),
		assistant.NewAggregator(catalogRepo, trendProvider, cfg.Assistant),
		llm.New(cfg.LLM),
		pipelineMetrics,
		logg,
	)

	keyRepo := apikeys.NewRepository(dbClient.DB())
	authRequired := cfg.Auth.APIKey != ""
	if !authRequired {
		active, err := keyRepo.CountActive(context.Background())
		if err != nil {
			logg.Error(context.Background(), "failed to count api keys", err)
			os.Exit(1)
		}
		authRequired = active > 0
	}
	if !authRequired && cfg.App.IsProd() {
		logg.Warn(context.Background(), "no api keys configured, assistant endpoint is open")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Assistant:    assistantService,
			Keys:         keyRepo,
			AuthRequired: authRequired,
			Redis:        redisClient,
			Metrics:      pipelineMetrics,
			Gatherer:     registry,
			Health: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
