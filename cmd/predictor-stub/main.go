// Command predictor-stub serves POST /predict with the rule-based fallback,
// for running the gateway without the real model service.
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/LonelyIsle/stunting-detector/internal/config"
	"github.com/LonelyIsle/stunting-detector/internal/logging"
	"github.com/LonelyIsle/stunting-detector/internal/stub"
)

func main() {
	_ = config.LoadDotEnv(".env")

	logger, err := logging.New(config.Log{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	port := os.Getenv("STUB_PORT")
	if port == "" {
		port = "5000"
	}
	srv := &http.Server{
		Addr:              "127.0.0.1:" + port,
		Handler:           stub.NewRouter(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("predictor stub running", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}
