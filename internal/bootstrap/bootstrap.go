// Package bootstrap assembles repositories, services and ingest sources from
// configuration for the command binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/andresuchdata/retailpulse/internal/cache"
	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/drive"
	"github.com/andresuchdata/retailpulse/internal/ingest"
	"github.com/andresuchdata/retailpulse/internal/inventory"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/andresuchdata/retailpulse/internal/repository"
	"github.com/andresuchdata/retailpulse/internal/repository/memory"
	"github.com/andresuchdata/retailpulse/internal/repository/postgres"
	"github.com/andresuchdata/retailpulse/internal/service"
	"github.com/andresuchdata/retailpulse/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Repositories struct {
	Products  repository.ProductRepository
	Sales     repository.SaleRepository
	Inventory repository.InventoryRepository
	DB        *postgres.DB
}

func (r *Repositories) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// OpenRepositories connects the configured storage driver.
func OpenRepositories(cfg *config.Config) (*Repositories, error) {
	switch cfg.Storage.Driver {
	case DriverMemory:
		store := memory.NewStore()
		return &Repositories{
			Products:  store.Products(),
			Sales:     store.Sales(),
			Inventory: store.Inventory(),
		}, nil
	case DriverPostgres, "":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Products:  postgres.NewProductRepository(db),
			Sales:     postgres.NewSaleRepository(db),
			Inventory: postgres.NewInventoryRepository(db),
			DB:        db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

type Services struct {
	Products  *service.ProductService
	Sales     *service.SaleService
	Analytics *service.AnalyticsService
	Inventory *service.InventoryService
	Metrics   *metrics.Metrics
}

// NewServices wires the services. A cache that cannot be reached degrades to
// the no-op cache.
func NewServices(cfg *config.Config, repos *Repositories, m *metrics.Metrics) *Services {
	productCache, err := cache.NewProductCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("product cache unavailable, continuing without it")
		productCache = cache.NewNoopProductCache()
	}

	ledger := inventory.NewLedger(repos.Inventory, repos.Products,
		inventory.WithDefaultThreshold(cfg.Inventory.DefaultLowStockThreshold))

	return &Services{
		Products:  service.NewProductService(repos.Products, productCache),
		Sales:     service.NewSaleService(repos.Sales, repos.Products, m),
		Analytics: service.NewAnalyticsService(repos.Sales, repos.Products),
		Inventory: service.NewInventoryService(repos.Inventory, ledger, m),
		Metrics:   m,
	}
}

// NewS3Client returns nil when no endpoint is configured.
func NewS3Client(cfg config.IngestConfig) (*storage.S3Client, error) {
	if cfg.S3Endpoint == "" {
		return nil, nil
	}
	return storage.NewS3Client(storage.S3Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	})
}

// NewSources builds every ingest source that has configuration.
func NewSources(ctx context.Context, cfg config.IngestConfig) ([]ingest.Source, error) {
	var sources []ingest.Source

	if cfg.DriveCredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.DriveCredentialsJSON, cfg.DriveFolderID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Drive service: %w", err)
		}
		sources = append(sources, driveService)
	}

	s3Client, err := NewS3Client(cfg)
	if err != nil {
		return nil, err
	}
	if s3Client != nil {
		sources = append(sources, storage.NewSource(s3Client))
	}

	return sources, nil
}
