// Package analytics derives revenue and sales totals from sale facts.
// Functions here are pure; loading facts is the caller's job.
package analytics

import (
	"sort"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/shopspring/decimal"
)

type AggregateOptions struct {
	Granularity period.Granularity
	Range       domain.DateRange
	// Category restricts facts to one product category when set.
	Category string
}

// Aggregate buckets facts by period. Buckets without facts are omitted and the
// result is ordered oldest first.
func Aggregate(facts []domain.SaleFact, opts AggregateOptions) []domain.Bucket {
	if opts.Range.Empty() {
		return []domain.Bucket{}
	}

	type acc struct {
		key     period.Key
		revenue decimal.Decimal
		sales   int
	}
	byKey := make(map[period.Key]*acc)

	for _, f := range facts {
		if !matches(f, opts.Range, opts.Category) {
			continue
		}
		k := period.KeyOf(f.Date, opts.Granularity)
		a, ok := byKey[k]
		if !ok {
			a = &acc{key: k, revenue: decimal.Zero}
			byKey[k] = a
		}
		a.revenue = a.revenue.Add(f.Revenue)
		a.sales++
	}

	accs := make([]*acc, 0, len(byKey))
	for _, a := range byKey {
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].key.Before(accs[j].key) })

	buckets := make([]domain.Bucket, len(accs))
	for i, a := range accs {
		buckets[i] = domain.Bucket{
			Key:          a.key.String(),
			TotalRevenue: a.revenue,
			TotalSales:   a.sales,
		}
	}
	return buckets
}

// AggregateByCategory rolls facts up per product category, ordered by name.
func AggregateByCategory(facts []domain.SaleFact, r domain.DateRange) []domain.CategoryTotals {
	if r.Empty() {
		return []domain.CategoryTotals{}
	}

	byCategory := make(map[string]*domain.CategoryTotals)
	for _, f := range facts {
		if !r.Contains(f.Date) {
			continue
		}
		c, ok := byCategory[f.Category]
		if !ok {
			c = &domain.CategoryTotals{Category: f.Category, TotalRevenue: decimal.Zero}
			byCategory[f.Category] = c
		}
		c.TotalRevenue = c.TotalRevenue.Add(f.Revenue)
		c.TotalSales++
	}

	out := make([]domain.CategoryTotals, 0, len(byCategory))
	for _, c := range byCategory {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// TopProducts ranks products by revenue, highest first. Ties go to the lower
// product id. A non-positive limit returns every product.
func TopProducts(facts []domain.SaleFact, r domain.DateRange, limit int) []domain.ProductRevenue {
	if r.Empty() {
		return []domain.ProductRevenue{}
	}

	byProduct := make(map[int64]*domain.ProductRevenue)
	for _, f := range facts {
		if !r.Contains(f.Date) {
			continue
		}
		p, ok := byProduct[f.ProductID]
		if !ok {
			p = &domain.ProductRevenue{ProductID: f.ProductID, Category: f.Category, TotalRevenue: decimal.Zero}
			byProduct[f.ProductID] = p
		}
		p.TotalRevenue = p.TotalRevenue.Add(f.Revenue)
		p.TotalQuantity += f.Quantity
	}

	out := make([]domain.ProductRevenue, 0, len(byProduct))
	for _, p := range byProduct {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalRevenue.Cmp(out[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func matches(f domain.SaleFact, r domain.DateRange, category string) bool {
	if category != "" && f.Category != category {
		return false
	}
	return r.Contains(f.Date)
}
