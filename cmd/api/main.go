package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kctmenswear/atelier-engine/cmd/mainconfig"
	"github.com/kctmenswear/atelier-engine/internal/analytics"
	"github.com/kctmenswear/atelier-engine/internal/api/router"
	"github.com/kctmenswear/atelier-engine/internal/catalog"
	appconfig "github.com/kctmenswear/atelier-engine/internal/config"
	"github.com/kctmenswear/atelier-engine/internal/engine"
	"github.com/kctmenswear/atelier-engine/internal/experiment"
	"github.com/kctmenswear/atelier-engine/internal/http/handlers"
	"github.com/kctmenswear/atelier-engine/internal/observability/metrics"
	"github.com/kctmenswear/atelier-engine/pkg/logging"
)

func main() {
	// Optional .env for local development; real env vars win.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting atelier-engine API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store_backend", cfg.StoreBackend,
	)

	metricsHandler, obs := setupMetrics()

	stores, err := setupStores(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize stores", "error", err)
		os.Exit(1)
	}
	defer stores.close()

	sink, db, err := setupSink(cfg)
	if err != nil {
		logger.Error("failed to initialize analytics sink", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	collector := analytics.NewCollector(sink, logger,
		analytics.WithFlushInterval(cfg.FlushInterval),
		analytics.WithFlushThreshold(cfg.FlushThreshold),
		analytics.WithCollectorMetrics(obs),
	)

	seed := cfg.SelectionSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	matcher := engine.NewMatcher(catalog.Default())
	scorer := engine.NewScorer(collector, seed)
	selector := engine.NewService(stores.sessions, stores.profiles, matcher, scorer, logger,
		engine.WithRecorder(collector),
		engine.WithMetrics(obs),
	)

	expEngine := experiment.NewEngine(stores.experiments, logger,
		experiment.WithVariateSource(experiment.NewVariateSource(seed)),
		experiment.WithEngineMetrics(obs),
		experiment.WithMinSampleSize(int64(cfg.MinSampleSize)),
		experiment.WithRollupRecorder(collector),
	)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(selector, logger),
		ExperimentsHandler: handlers.NewExperimentsHandler(expEngine, logger),
		AnalyticsHandler:   handlers.NewAnalyticsHandler(collector, logger),
		MetricsHandler:     metricsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRateLimit:      cfg.ChatRateLimit,
		ChatRateBurst:      cfg.ChatRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Drain buffered analytics before the sink goes away.
	collector.Close(ctx)

	logger.Info("server stopped")
}

// setupMetrics builds an isolated registry with runtime collectors plus the
// engine's own instruments.
func setupMetrics() (http.Handler, *metrics.EngineMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	obs := metrics.NewEngineMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), obs
}

// stores bundles the selected persistence backends.
type stores struct {
	sessions    engine.SessionStore
	profiles    engine.ProfileStore
	experiments experiment.Store
	close       func()
}

// setupStores picks the backends for STORE_BACKEND: "memory" keeps everything
// in-process, "redis" shares sessions and experiments across instances, and
// "dynamo" uses DynamoDB for experiments with in-process session state.
func setupStores(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(redisOptions(cfg))
		store := engine.NewRedisStore(client, cfg.SessionTTL, nil)
		return &stores{
			sessions:    store,
			profiles:    store,
			experiments: experiment.NewRedisStore(client, nil),
			close:       func() { _ = client.Close() },
		}, nil

	case "dynamo":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		mem := engine.NewMemoryStore(cfg.SessionTTL)
		return &stores{
			sessions:    mem,
			profiles:    mem,
			experiments: experiment.NewDynamoStore(dynamoClient, cfg.ExperimentsTable, cfg.AssignmentsTable, logger),
			close:       func() {},
		}, nil

	default:
		mem := engine.NewMemoryStore(cfg.SessionTTL)
		return &stores{
			sessions:    mem,
			profiles:    mem,
			experiments: experiment.NewMemoryStore(),
			close:       func() {},
		}, nil
	}
}

func redisOptions(cfg *appconfig.Config) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// setupSink writes analytics to Postgres when DATABASE_URL is set, otherwise
// keeps them in memory.
func setupSink(cfg *appconfig.Config) (analytics.Sink, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return analytics.NewMemorySink(), nil, nil
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return analytics.NewPostgresSink(db), db, nil
}
