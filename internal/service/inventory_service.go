package service

import (
	"context"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/inventory"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/andresuchdata/retailpulse/internal/repository"
	"github.com/rs/zerolog/log"
)

type InventoryService struct {
	repo    repository.InventoryRepository
	ledger  *inventory.Ledger
	scanner *inventory.Scanner
	metrics *metrics.Metrics
}

func NewInventoryService(repo repository.InventoryRepository, ledger *inventory.Ledger, m *metrics.Metrics) *InventoryService {
	return &InventoryService{
		repo:    repo,
		ledger:  ledger,
		scanner: inventory.NewScanner(repo),
		metrics: m,
	}
}

func (s *InventoryService) record(op string, productID int64, err error) {
	switch {
	case err == nil:
		s.metrics.RecordInventoryMutation(op, "ok")
	case domain.IsClientError(err) || domain.IsNotFound(err) || domain.IsConflict(err):
		s.metrics.RecordInventoryMutation(op, "rejected")
		log.Debug().Err(err).Str("operation", op).Int64("product_id", productID).Msg("inventory: mutation rejected")
	default:
		s.metrics.RecordInventoryMutation(op, "error")
		log.Error().Err(err).Str("operation", op).Int64("product_id", productID).Msg("inventory: mutation failed")
	}
}

func (s *InventoryService) CreateInventory(ctx context.Context, in domain.NewInventory) (*domain.Inventory, error) {
	inv, err := s.ledger.Create(ctx, in)
	s.record("create", in.ProductID, err)
	return inv, err
}

func (s *InventoryService) AdjustInventory(ctx context.Context, productID int64, delta int) (*domain.Inventory, error) {
	inv, err := s.ledger.Adjust(ctx, productID, delta)
	s.record("adjust", productID, err)
	if err == nil {
		log.Info().Int64("product_id", productID).Int("delta", delta).Int("quantity", inv.Quantity).Msg("inventory adjusted")
	}
	return inv, err
}

func (s *InventoryService) UpdateInventory(ctx context.Context, productID int64, u domain.InventoryUpdate) (*domain.Inventory, error) {
	inv, err := s.ledger.SetFields(ctx, productID, u)
	s.record("update", productID, err)
	return inv, err
}

func (s *InventoryService) Get(ctx context.Context, productID int64) (*domain.Inventory, error) {
	return s.repo.GetByProduct(ctx, productID)
}

func (s *InventoryService) List(ctx context.Context, filter domain.InventoryFilter) ([]domain.StockItem, error) {
	return s.repo.List(ctx, filter)
}

func (s *InventoryService) ScanLowStock(ctx context.Context, override *int, category string) ([]domain.Deficit, error) {
	deficits, err := s.scanner.Scan(ctx, override, category)
	if err != nil {
		return nil, err
	}
	if override == nil && category == "" {
		s.metrics.SetLowStockItems(len(deficits))
	}
	return deficits, nil
}

func (s *InventoryService) InventorySummary(ctx context.Context) (domain.InventorySummary, error) {
	summary, err := s.scanner.Summary(ctx)
	if err != nil {
		return domain.InventorySummary{}, err
	}
	s.metrics.SetLowStockItems(summary.LowStockItems)
	return summary, nil
}
