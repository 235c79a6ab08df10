package inventory

import (
	"context"
	"sort"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/repository"
)

type Scanner struct {
	inventory repository.InventoryRepository
}

func NewScanner(inv repository.InventoryRepository) *Scanner {
	return &Scanner{inventory: inv}
}

// Scan lists the low-stock items, optionally within one category.
func (s *Scanner) Scan(ctx context.Context, override *int, category string) ([]domain.Deficit, error) {
	items, err := s.inventory.List(ctx, domain.InventoryFilter{Category: category})
	if err != nil {
		return nil, err
	}
	return ScanItems(items, override), nil
}

func (s *Scanner) Summary(ctx context.Context) (domain.InventorySummary, error) {
	items, err := s.inventory.List(ctx, domain.InventoryFilter{})
	if err != nil {
		return domain.InventorySummary{}, err
	}
	return Summarize(items), nil
}

// ScanItems returns a deficit for each low-stock item, ordered by product id.
func ScanItems(items []domain.StockItem, override *int) []domain.Deficit {
	out := make([]domain.Deficit, 0)
	for _, it := range items {
		if !IsLowStock(it.Inventory, override) {
			continue
		}
		threshold := EffectiveThreshold(it.Inventory, override)
		out = append(out, domain.Deficit{
			ProductID:         it.ProductID,
			ProductName:       it.ProductName,
			Category:          it.Category,
			Quantity:          it.Quantity,
			LowStockThreshold: threshold,
			Deficit:           threshold - it.Quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Summarize counts distinct products, total units, items low against their
// own threshold, and units per category (ordered by category).
func Summarize(items []domain.StockItem) domain.InventorySummary {
	products := make(map[int64]struct{}, len(items))
	byCategory := make(map[string]int)
	var summary domain.InventorySummary

	for _, it := range items {
		products[it.ProductID] = struct{}{}
		summary.TotalQuantity += it.Quantity
		if IsLowStock(it.Inventory, nil) {
			summary.LowStockItems++
		}
		byCategory[it.Category] += it.Quantity
	}
	summary.TotalProducts = len(products)

	summary.Categories = make([]domain.CategoryQuantity, 0, len(byCategory))
	for c, q := range byCategory {
		summary.Categories = append(summary.Categories, domain.CategoryQuantity{Category: c, Quantity: q})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Category < summary.Categories[j].Category
	})
	return summary
}
