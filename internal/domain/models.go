package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold applies when an inventory record is created without one.
const DefaultLowStockThreshold = 10

// MaxQuantity bounds stock quantities and thresholds to the INTEGER columns
// that store them.
const MaxQuantity = math.MaxInt32

// Product is an item offered for sale.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Description *string         `json:"description,omitempty" db:"description"`
}

// ProductUpdate is a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Price == nil && u.Category == nil && u.Description == nil
}

// Apply copies the set fields of u onto p.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Description != nil {
		p.Description = u.Description
	}
}

// Sale is one append-only transaction line. Revenue is recorded as given and
// is not derived from the product price.
type Sale struct {
	ID        int64           `json:"id" db:"id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	SaleDate  time.Time       `json:"sale_date" db:"sale_date"`
	Revenue   decimal.Decimal `json:"revenue" db:"revenue"`
}

// Inventory is the single stock record of a product.
type Inventory struct {
	ID                int64     `json:"id" db:"id"`
	ProductID         int64     `json:"product_id" db:"product_id"`
	Quantity          int       `json:"quantity" db:"quantity"`
	LowStockThreshold int       `json:"low_stock_threshold" db:"low_stock_threshold"`
	LastUpdated       time.Time `json:"last_updated" db:"last_updated"`
}

// StockItem is an inventory record joined with its product's name and category.
type StockItem struct {
	Inventory
	ProductName string `json:"product_name" db:"product_name"`
	Category    string `json:"category" db:"category"`
}

// NewInventory is the input for creating an inventory record.
type NewInventory struct {
	ProductID         int64
	Quantity          int
	LowStockThreshold *int
	LastUpdated       time.Time
}

// InventoryUpdate is a partial update of an inventory record.
type InventoryUpdate struct {
	Quantity          *int
	LowStockThreshold *int
	LastUpdated       *time.Time
}

func (u InventoryUpdate) IsEmpty() bool {
	return u.Quantity == nil && u.LowStockThreshold == nil && u.LastUpdated == nil
}

// CategoryProducts groups products under their category.
type CategoryProducts struct {
	Category string    `json:"category"`
	Products []Product `json:"products"`
}
