package service

import (
	"context"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/andresuchdata/retailpulse/internal/repository"
	"github.com/rs/zerolog/log"
)

type SaleService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewSaleService(sales repository.SaleRepository, products repository.ProductRepository, m *metrics.Metrics) *SaleService {
	return &SaleService{sales: sales, products: products, metrics: m, now: time.Now}
}

// Record appends a sale. The quantity must be positive; revenue is stored as
// given. A zero sale date means today.
func (s *SaleService) Record(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if sale.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}
	if sale.Revenue.IsNegative() {
		return nil, domain.NewValidationError("revenue", "must not be negative")
	}
	if _, err := s.products.Get(ctx, sale.ProductID); err != nil {
		return nil, err
	}

	if sale.SaleDate.IsZero() {
		sale.SaleDate = s.now()
	}
	sale.SaleDate = period.Truncate(sale.SaleDate)

	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	s.metrics.RecordSale()
	log.Debug().
		Int64("sale_id", sale.ID).
		Int64("product_id", sale.ProductID).
		Int("quantity", sale.Quantity).
		Str("revenue", sale.Revenue.String()).
		Msg("sale recorded")
	return sale, nil
}

func (s *SaleService) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.sales.Get(ctx, id)
}

func (s *SaleService) List(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	return s.sales.List(ctx, filter)
}
