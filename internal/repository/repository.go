package repository

import (
	"context"

	"github.com/andresuchdata/retailpulse/internal/domain"
)

// Lookups of missing records return a *domain.NotFoundError.

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error)
	CategoryOf(ctx context.Context, id int64) (string, error)
}

// SaleRepository is append-only.
type SaleRepository interface {
	Create(ctx context.Context, s *domain.Sale) error
	Get(ctx context.Context, id int64) (*domain.Sale, error)
	List(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
}

// InventoryUpdateFunc mutates a copy of the current record. Returning an
// error discards the change.
type InventoryUpdateFunc func(inv *domain.Inventory) error

type InventoryRepository interface {
	// Create fails with domain.ErrAlreadyExists when the product already has a record.
	Create(ctx context.Context, inv *domain.Inventory) error
	GetByProduct(ctx context.Context, productID int64) (*domain.Inventory, error)
	List(ctx context.Context, filter domain.InventoryFilter) ([]domain.StockItem, error)
	// Update runs fn as one atomic read-modify-write of the product's record.
	// Concurrent updates of the same product are serialized.
	Update(ctx context.Context, productID int64, fn InventoryUpdateFunc) (*domain.Inventory, error)
}
