package domain

import "github.com/shopspring/decimal"

// Zero Limit means no limit.
type ProductFilter struct {
	Category    string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Name        string
	Description string
	Offset      int
	Limit       int
}

type SaleFilter struct {
	Range     DateRange
	ProductID *int64
	Category  string
	Offset    int
	Limit     int
}

type InventoryFilter struct {
	ProductID    *int64
	Category     string
	LowStockOnly bool
	Offset       int
	Limit        int
}
