// Package memory keeps products, sales and inventory in process memory. It
// backs tests and the single-node "memory" storage driver.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/repository"
)

type Store struct {
	mu        sync.RWMutex
	products  map[int64]domain.Product
	sales     map[int64]domain.Sale
	inventory map[int64]domain.Inventory // keyed by product id

	nextProductID   int64
	nextSaleID      int64
	nextInventoryID int64

	// per-product locks serializing inventory read-modify-write
	locks sync.Map
}

func NewStore() *Store {
	return &Store{
		products:  make(map[int64]domain.Product),
		sales:     make(map[int64]domain.Sale),
		inventory: make(map[int64]domain.Inventory),
	}
}

func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }
func (s *Store) Sales() *SaleRepository { return &SaleRepository{s: s} }
func (s *Store) Inventory() *InventoryRepository { return &InventoryRepository{s: s} }

var (
	_ repository.ProductRepository   = (*ProductRepository)(nil)
	_ repository.SaleRepository      = (*SaleRepository)(nil)
	_ repository.InventoryRepository = (*InventoryRepository)(nil)
)

type ProductRepository struct{ s *Store }

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextProductID++
	p.ID = r.s.nextProductID
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	return &p, nil
}

func (r *ProductRepository) CategoryOf(ctx context.Context, id int64) (string, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Category, nil
}

func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	out := make([]domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if productMatches(p, f) {
			out = append(out, p)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), nil
}

func productMatches(p domain.Product, f domain.ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Name != "" && !containsFold(p.Name, f.Name) {
		return false
	}
	if f.Description != "" && (p.Description == nil || !containsFold(*p.Description, f.Description)) {
		return false
	}
	return true
}

func (r *ProductRepository) Update(ctx context.Context, id int64, u domain.ProductUpdate) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	u.Apply(&p)
	r.s.products[id] = p
	return &p, nil
}

type SaleRepository struct{ s *Store }

func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[sale.ProductID]; !ok {
		return &domain.NotFoundError{Entity: "product", ID: sale.ProductID}
	}
	r.s.nextSaleID++
	sale.ID = r.s.nextSaleID
	r.s.sales[sale.ID] = *sale
	return nil
}

func (r *SaleRepository) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sale, ok := r.s.sales[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "sale", ID: id}
	}
	return &sale, nil
}

// List returns matching sales ordered by date, then id.
func (r *SaleRepository) List(ctx context.Context, f domain.SaleFilter) ([]domain.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Range.Empty() {
		return []domain.Sale{}, nil
	}

	r.s.mu.RLock()
	out := make([]domain.Sale, 0)
	for _, sale := range r.s.sales {
		if f.ProductID != nil && sale.ProductID != *f.ProductID {
			continue
		}
		if f.Category != "" && r.s.products[sale.ProductID].Category != f.Category {
			continue
		}
		if !f.Range.Contains(sale.SaleDate) {
			continue
		}
		out = append(out, sale)
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.Before(out[j].SaleDate)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Offset, f.Limit), nil
}

type InventoryRepository struct{ s *Store }

func (r *InventoryRepository) lock(productID int64) *sync.Mutex {
	m, _ := r.s.locks.LoadOrStore(productID, &sync.Mutex{})
	return m.(*sync.Mutex)
}

func (r *InventoryRepository) Create(ctx context.Context, inv *domain.Inventory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[inv.ProductID]; !ok {
		return &domain.NotFoundError{Entity: "product", ID: inv.ProductID}
	}
	if _, ok := r.s.inventory[inv.ProductID]; ok {
		return domain.ErrAlreadyExists
	}
	r.s.nextInventoryID++
	inv.ID = r.s.nextInventoryID
	r.s.inventory[inv.ProductID] = *inv
	return nil
}

func (r *InventoryRepository) GetByProduct(ctx context.Context, productID int64) (*domain.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inv, ok := r.s.inventory[productID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "inventory", ID: productID}
	}
	return &inv, nil
}

// List joins each record with its product and orders by product id.
func (r *InventoryRepository) List(ctx context.Context, f domain.InventoryFilter) ([]domain.StockItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	out := make([]domain.StockItem, 0, len(r.s.inventory))
	for pid, inv := range r.s.inventory {
		if f.ProductID != nil && pid != *f.ProductID {
			continue
		}
		p := r.s.products[pid]
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.LowStockOnly && inv.Quantity > inv.LowStockThreshold {
			continue
		}
		out = append(out, domain.StockItem{Inventory: inv, ProductName: p.Name, Category: p.Category})
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return page(out, f.Offset, f.Limit), nil
}

func (r *InventoryRepository) Update(ctx context.Context, productID int64, fn repository.InventoryUpdateFunc) (*domain.Inventory, error) {
	m := r.lock(productID)
	m.Lock()
	defer m.Unlock()

	current, err := r.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	next := *current
	if err := fn(&next); err != nil {
		return nil, err
	}
	next.ID, next.ProductID = current.ID, current.ProductID

	r.s.mu.Lock()
	r.s.inventory[productID] = next
	r.s.mu.Unlock()
	return &next, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
