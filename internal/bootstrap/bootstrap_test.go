package bootstrap

import (
	"context"
	"testing"

	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDriverWiring(t *testing.T) {
	cfg := &config.Config{
		Storage:   config.StorageConfig{Driver: DriverMemory},
		Inventory: config.InventoryConfig{DefaultLowStockThreshold: 3},
	}
	repos, err := OpenRepositories(cfg)
	require.NoError(t, err)
	defer repos.Close()
	assert.Nil(t, repos.DB)

	svc := NewServices(cfg, repos, metrics.New())
	ctx := context.Background()

	p, err := svc.Products.Create(ctx, &domain.Product{Name: "Tablet", Category: "Electronics", Price: decimal.NewFromInt(300)})
	require.NoError(t, err)

	inv, err := svc.Inventory.CreateInventory(ctx, domain.NewInventory{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, inv.LowStockThreshold)
}

func TestUnknownDriver(t *testing.T) {
	_, err := OpenRepositories(&config.Config{Storage: config.StorageConfig{Driver: "mongo"}})
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestNewSources(t *testing.T) {
	sources, err := NewSources(context.Background(), config.IngestConfig{})
	require.NoError(t, err)
	assert.Empty(t, sources)

	sources, err = NewSources(context.Background(), config.IngestConfig{
		S3Endpoint: "http://localhost:9000", S3AccessKey: "a", S3SecretKey: "b", S3Bucket: "sales",
	})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "s3", sources[0].Name())

	_, err = NewSources(context.Background(), config.IngestConfig{DriveCredentialsJSON: "{not json"})
	assert.Error(t, err)
}
