package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/retailpulse/internal/api"
	"github.com/andresuchdata/retailpulse/internal/bootstrap"
	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/andresuchdata/retailpulse/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := bootstrap.OpenRepositories(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open storage")
	}
	defer repos.Close()

	if repos.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := repos.DB.Migrate(ctx)
		cancel()
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	services := bootstrap.NewServices(cfg, repos, metrics.New())
	router := api.NewRouter(&api.Services{
		Products:  services.Products,
		Sales:     services.Sales,
		Analytics: services.Analytics,
		Inventory: services.Inventory,
		Metrics:   services.Metrics,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
