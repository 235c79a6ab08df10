package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/retailpulse/internal/cache"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/repository"
	"github.com/rs/zerolog/log"
)

type ProductService struct {
	repo  repository.ProductRepository
	cache cache.ProductCache
}

func NewProductService(repo repository.ProductRepository, cacheImpl cache.ProductCache) *ProductService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopProductCache()
	}
	return &ProductService{repo: repo, cache: cacheImpl}
}

func validateProduct(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if p.Category == "" {
		return domain.NewValidationError("category", "is required")
	}
	if p.Price.IsNegative() {
		return domain.NewValidationError("price", "must not be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Int64("product_id", p.ID).Str("category", p.Category).Msg("product created")
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if p, ok, err := s.cache.Get(ctx, id); err == nil && ok {
		return p, nil
	} else if err != nil {
		log.Warn().Err(err).Int64("product_id", id).Msg("product: cache get failed")
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, p); err != nil {
		log.Warn().Err(err).Int64("product_id", id).Msg("product: cache set failed")
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, filter)
}

// Search matches name and description case-insensitively.
func (s *ProductService) Search(ctx context.Context, name, description string, offset, limit int) ([]domain.Product, error) {
	return s.repo.List(ctx, domain.ProductFilter{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Offset:      offset,
		Limit:       limit,
	})
}

func (s *ProductService) Update(ctx context.Context, id int64, u domain.ProductUpdate) (*domain.Product, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if u.Category != nil && strings.TrimSpace(*u.Category) == "" {
		return nil, domain.NewValidationError("category", "must not be empty")
	}
	if u.Price != nil && u.Price.IsNegative() {
		return nil, domain.NewValidationError("price", "must not be negative")
	}

	p, err := s.repo.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Int64("product_id", id).Msg("product: cache invalidate failed")
	}
	return p, nil
}

// PurgeCache drops every cached product, e.g. after the tables were reset.
func (s *ProductService) PurgeCache(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("purge product cache: %w", err)
	}
	return nil
}

// ByCategory groups the whole catalog by category, categories in name order.
func (s *ProductService) ByCategory(ctx context.Context) ([]domain.CategoryProducts, error) {
	products, err := s.repo.List(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.Product)
	for _, p := range products {
		grouped[p.Category] = append(grouped[p.Category], p)
	}

	out := make([]domain.CategoryProducts, 0, len(grouped))
	for category, items := range grouped {
		out = append(out, domain.CategoryProducts{Category: category, Products: items})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
