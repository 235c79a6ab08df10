// Command api serves the sales ingestion endpoints for Google Drive and
// S3-compatible sources.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andresuchdata/retailpulse/internal/bootstrap"
	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/ingest"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/andresuchdata/retailpulse/pkg/logger"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Log.Level)

	repos, err := bootstrap.OpenRepositories(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer repos.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	sources, err := bootstrap.NewSources(ctx, cfg.Ingest)
	cancel()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize ingest sources")
	}
	if len(sources) == 0 {
		logger.Log.Warn().Msg("No ingest sources configured; set GOOGLE_DRIVE_CREDENTIALS_JSON or S3_ENDPOINT")
	}

	m := metrics.New()
	services := bootstrap.NewServices(cfg, repos, m)
	ingestService := ingest.NewService(services.Sales, m, cfg.Ingest.WorkerCount, sources...)

	r := mux.NewRouter()
	ingest.NewHandler(ingestService).RegisterRoutes(r)
	r.Handle("/metrics", m.Handler()).Methods("GET")

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Ingest.Port)
	logger.Log.Info().Str("addr", addr).Strs("sources", ingestService.Sources()).Msg("Ingest server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.Fatal().Err(err).Msg("Ingest server stopped")
	}
}
