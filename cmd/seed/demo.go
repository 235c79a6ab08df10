package main

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/shopspring/decimal"
)

const (
	demoDays      = 30
	demoSaleEvery = 5
)

type catalogue interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
}

type saleRecorder interface {
	Record(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
}

type stockCreator interface {
	CreateInventory(ctx context.Context, in domain.NewInventory) (*domain.Inventory, error)
}

func demoProducts() []domain.Product {
	describe := func(s string) *string { return &s }
	return []domain.Product{
		{Name: "Laptop", Price: decimal.RequireFromString("999.99"), Category: "Electronics", Description: describe("High-performance laptop")},
		{Name: "Smartphone", Price: decimal.RequireFromString("699.99"), Category: "Electronics", Description: describe("Latest smartphone model")},
		{Name: "Headphones", Price: decimal.RequireFromString("149.99"), Category: "Electronics", Description: describe("Noise-cancelling headphones")},
		{Name: "Smartwatch", Price: decimal.RequireFromString("199.99"), Category: "Electronics", Description: describe("Fitness tracking smartwatch")},
		{Name: "Tablet", Price: decimal.RequireFromString("299.99"), Category: "Electronics", Description: describe("Portable tablet device")},
	}
}

// demoSales sells every product every fifth day over the last 30 days, 1 to 3
// units at list price.
func demoSales(products []domain.Product, today time.Time) []domain.Sale {
	today = period.Truncate(today)
	var sales []domain.Sale
	for i := 1; i <= demoDays; i++ {
		if i%demoSaleEvery != 0 {
			continue
		}
		quantity := i%3 + 1
		for _, p := range products {
			sales = append(sales, domain.Sale{
				ProductID: p.ID,
				Quantity:  quantity,
				SaleDate:  today.AddDate(0, 0, -i),
				Revenue:   p.Price.Mul(decimal.NewFromInt(int64(quantity))),
			})
		}
	}
	return sales
}

type seedSummary struct {
	Products  int
	Sales     int
	Inventory int
}

// seedDemo writes the demo catalogue, its sales history and one stock record
// per product.
func seedDemo(ctx context.Context, products catalogue, sales saleRecorder, stock stockCreator, today time.Time) (seedSummary, error) {
	var summary seedSummary

	created := make([]domain.Product, 0, len(demoProducts()))
	for _, p := range demoProducts() {
		saved, err := products.Create(ctx, &p)
		if err != nil {
			return summary, fmt.Errorf("create product %s: %w", p.Name, err)
		}
		created = append(created, *saved)
	}
	summary.Products = len(created)

	for _, s := range demoSales(created, today) {
		if _, err := sales.Record(ctx, &s); err != nil {
			return summary, fmt.Errorf("record sale for product %d: %w", s.ProductID, err)
		}
		summary.Sales++
	}

	for _, p := range created {
		_, err := stock.CreateInventory(ctx, domain.NewInventory{
			ProductID:   p.ID,
			Quantity:    int(p.ID)*10 + 5,
			LastUpdated: period.Truncate(today),
		})
		if err != nil {
			return summary, fmt.Errorf("create inventory for product %d: %w", p.ID, err)
		}
		summary.Inventory++
	}

	return summary, nil
}
