package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fare-predict/internal/api"
	"fare-predict/internal/config"
	"fare-predict/internal/data"
	"fare-predict/internal/logging"
	"fare-predict/internal/predict"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}
	defer closeLog()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The model is loaded once. Without it the page renders the diagnostic
	// and no trigger.
	adapter := predict.Open(ctx, cfg.Model.Type, cfg.Model.Path, logger)

	var dataset *data.Dataset
	if cfg.Dataset.Enabled {
		dataset = data.NewDataset(data.FetcherFromConfig(cfg.Dataset, logger), logger)
		go dataset.Prepare(ctx)
	}

	router, err := api.NewRouter(api.Deps{
		Adapter:        adapter,
		Dataset:        dataset,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err != nil {
		logger.Fatal("router", zap.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting API server",
			zap.String("addr", server.Addr),
			zap.Bool("model_available", adapter.Available()),
			zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
