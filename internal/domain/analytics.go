package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange bounds a query inclusively. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether the calendar date of t lies within the range.
// Bounds are compared by date only.
func (r DateRange) Contains(t time.Time) bool {
	d := truncateDay(t)
	if r.Start != nil && d.Before(truncateDay(*r.Start)) {
		return false
	}
	if r.End != nil && d.After(truncateDay(*r.End)) {
		return false
	}
	return true
}

// Empty reports whether the range can contain no date (end before start).
func (r DateRange) Empty() bool {
	return r.Start != nil && r.End != nil && truncateDay(*r.End).Before(truncateDay(*r.Start))
}

// Period is a closed date range with both bounds set.
type Period struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

func (p Period) Range() DateRange {
	start, end := p.Start, p.End
	return DateRange{Start: &start, End: &end}
}

// SaleFact is the projection of a sale the aggregator works on.
type SaleFact struct {
	ProductID int64
	Category  string
	Date      time.Time
	Quantity  int
	Revenue   decimal.Decimal
}

// Bucket is a derived per-period total. Never persisted.
type Bucket struct {
	Key          string          `json:"period"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalSales   int             `json:"total_sales"`
}

// CategoryTotals is the revenue rollup of one product category.
type CategoryTotals struct {
	Category     string          `json:"category"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalSales   int             `json:"total_sales"`
}

// ProductRevenue ranks a product by the revenue of its sales.
type ProductRevenue struct {
	ProductID     int64           `json:"product_id"`
	Name          string          `json:"name,omitempty"`
	Category      string          `json:"category,omitempty"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalQuantity int             `json:"total_quantity"`
}

type PeriodTotals struct {
	Period
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalSales   int             `json:"total_sales"`
}

// PeriodComparison holds the totals of two periods and period1 minus period2.
type PeriodComparison struct {
	Period1           PeriodTotals    `json:"period1"`
	Period2           PeriodTotals    `json:"period2"`
	RevenueDifference decimal.Decimal `json:"revenue_difference"`
	SalesDifference   int             `json:"sales_difference"`
}

// Deficit describes a low-stock item.
type Deficit struct {
	ProductID         int64  `json:"product_id"`
	ProductName       string `json:"product_name"`
	Category          string `json:"category"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	Deficit           int    `json:"deficit"`
}

type CategoryQuantity struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type InventorySummary struct {
	TotalProducts int                `json:"total_products"`
	TotalQuantity int                `json:"total_quantity"`
	LowStockItems int                `json:"low_stock_items"`
	Categories    []CategoryQuantity `json:"categories"`
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
