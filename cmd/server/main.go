package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/LonelyIsle/stunting-detector/internal/cache"
	"github.com/LonelyIsle/stunting-detector/internal/clients"
	"github.com/LonelyIsle/stunting-detector/internal/config"
	"github.com/LonelyIsle/stunting-detector/internal/handlers"
	"github.com/LonelyIsle/stunting-detector/internal/logging"
	"github.com/LonelyIsle/stunting-detector/internal/metrics"
	"github.com/LonelyIsle/stunting-detector/internal/security"
	"github.com/LonelyIsle/stunting-detector/internal/web"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("dotenv: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	predictor, err := clients.NewPredictorClient(cfg.Predictor.URL, cfg.Predictor.Timeout, logger.Named("predictor"))
	if err != nil {
		logger.Fatal("predictor client", zap.Error(err))
	}
	view, err := web.NewView()
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}
	csrf, err := security.NewCSRF(cfg.Security.CSRFKey, cfg.Security.DisableCSRF)
	if err != nil {
		logger.Fatal("csrf", zap.Error(err))
	}
	if cfg.Security.CSRFKey == "" && csrf.Enabled() {
		logger.Warn("CSRF_KEY not set, using a per-process key")
	}

	var limiter security.Limiter
	if !cfg.Security.DisableRateLimit {
		limiter = security.NewMemoryLimiter(cfg.Security.RateLimitPerMinute, time.Minute, 0)
		if cfg.Cache.Addr != "" {
			counters, err := cache.Connect(context.Background(), cfg.Cache.Addr, cfg.Cache.DB, logger)
			if err != nil {
				logger.Fatal("valkey", zap.Error(err))
			}
			defer counters.Close()
			limiter = security.NewRedisLimiter(counters, cfg.Security.RateLimitPerMinute, time.Minute)
		}
	}

	m := metrics.New()
	router := handlers.NewRouter(handlers.RouterDeps{
		Page:         handlers.NewPage(predictor, view, csrf, m, logger.Named("page")),
		CSRF:         csrf,
		Limiter:      limiter,
		Metrics:      m,
		Log:          logger,
		PredictorURL: predictor.URL(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("stunting detector gateway running",
			zap.String("addr", srv.Addr),
			zap.String("predictor", predictor.URL()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
