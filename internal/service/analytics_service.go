package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/retailpulse/internal/analytics"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/andresuchdata/retailpulse/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
}

func NewAnalyticsService(sales repository.SaleRepository, products repository.ProductRepository) *AnalyticsService {
	return &AnalyticsService{sales: sales, products: products}
}

// loadFacts reads the sales in r and the product catalog concurrently and
// joins them into facts carrying each product's category.
func (s *AnalyticsService) loadFacts(ctx context.Context, r domain.DateRange) ([]domain.SaleFact, map[int64]domain.Product, error) {
	if r.Empty() {
		return nil, nil, nil
	}

	var (
		sales    []domain.Sale
		products []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.sales.List(gctx, domain.SaleFilter{Range: r})
		if err != nil {
			return fmt.Errorf("load sales: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = s.products.List(gctx, domain.ProductFilter{})
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	catalog := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	facts := make([]domain.SaleFact, 0, len(sales))
	for _, sale := range sales {
		p, ok := catalog[sale.ProductID]
		if !ok {
			log.Warn().Int64("sale_id", sale.ID).Int64("product_id", sale.ProductID).Msg("analytics: sale references unknown product")
		}
		facts = append(facts, domain.SaleFact{
			ProductID: sale.ProductID,
			Category:  p.Category,
			Date:      sale.SaleDate,
			Quantity:  sale.Quantity,
			Revenue:   sale.Revenue,
		})
	}
	return facts, catalog, nil
}

// Aggregate buckets revenue and sale counts by period.
func (s *AnalyticsService) Aggregate(ctx context.Context, g period.Granularity, r domain.DateRange, category string) ([]domain.Bucket, error) {
	facts, _, err := s.loadFacts(ctx, r)
	if err != nil {
		return nil, err
	}
	return analytics.Aggregate(facts, analytics.AggregateOptions{
		Granularity: g,
		Range:       r,
		Category:    category,
	}), nil
}

func (s *AnalyticsService) ByCategory(ctx context.Context, r domain.DateRange) ([]domain.CategoryTotals, error) {
	facts, _, err := s.loadFacts(ctx, r)
	if err != nil {
		return nil, err
	}
	return analytics.AggregateByCategory(facts, r), nil
}

// ComparePeriods loads the span covering both periods once.
func (s *AnalyticsService) ComparePeriods(ctx context.Context, p1, p2 domain.Period) (domain.PeriodComparison, error) {
	start, end := p1.Start, p1.End
	if p2.Start.Before(start) {
		start = p2.Start
	}
	if p2.End.After(end) {
		end = p2.End
	}

	facts, _, err := s.loadFacts(ctx, domain.DateRange{Start: &start, End: &end})
	if err != nil {
		return domain.PeriodComparison{}, err
	}
	return analytics.Compare(facts, p1, p2), nil
}

// TopSelling ranks products by revenue within r.
func (s *AnalyticsService) TopSelling(ctx context.Context, r domain.DateRange, limit int) ([]domain.ProductRevenue, error) {
	facts, catalog, err := s.loadFacts(ctx, r)
	if err != nil {
		return nil, err
	}
	top := analytics.TopProducts(facts, r, limit)
	for i := range top {
		top[i].Name = catalog[top[i].ProductID].Name
	}
	return top, nil
}
