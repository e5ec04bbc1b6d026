package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tropicaldog17/stock-insight/internal/config"
	"github.com/tropicaldog17/stock-insight/internal/handlers"
	"github.com/tropicaldog17/stock-insight/internal/logger"
	"github.com/tropicaldog17/stock-insight/internal/metrics"
	"github.com/tropicaldog17/stock-insight/internal/services"
	"github.com/tropicaldog17/stock-insight/internal/telemetry"
)

// @title Stock Insight API
// @version 1.0
// @description Stock lookup and AI-generated investment insight.
// @BasePath /
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config:", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, zl)
	if err != nil {
		zl.Fatal("Failed to set up tracing", zap.Error(err))
	}

	m := metrics.New()

	// Initialize services
	yahoo, err := services.NewYahooClient(cfg.Upstream,
		services.WithLogger(zl.Named("upstream")),
		services.WithMetrics(m),
	)
	if err != nil {
		zl.Fatal("Failed to create upstream client", zap.Error(err))
	}
	stockService := services.NewStockService(yahoo, cfg.Upstream.LookupDeadline, zl.Named("stock"), m)

	completer, err := services.NewCompleter(ctx, cfg.Insight)
	if err != nil {
		zl.Fatal("Failed to create completion client", zap.Error(err))
	}
	if completer == nil {
		zl.Warn("Insight API key not set, /analyze will return 503",
			zap.String("provider", cfg.Insight.Provider),
			zap.String("env", config.APIKeyEnv(cfg.Insight.Provider)),
		)
	}
	insightService := services.NewInsightService(cfg.Insight, completer, zl.Named("insight"), m)

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Stock:       stockService,
			Insight:     insightService,
			Metrics:     m,
			Logger:      zl.Named("http"),
			CORSOrigins: cfg.Server.CORSOrigins,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zl.Info("Server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("provider", cfg.Insight.Provider),
			zap.String("model", cfg.Insight.Model),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Graceful shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zl.Error("Tracer shutdown failed", zap.Error(err))
	}
}
