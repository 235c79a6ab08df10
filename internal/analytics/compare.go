package analytics

import (
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/shopspring/decimal"
)

// Totals sums the facts dated within p.
func Totals(facts []domain.SaleFact, p domain.Period) domain.PeriodTotals {
	t := domain.PeriodTotals{Period: p, TotalRevenue: decimal.Zero}
	r := p.Range()
	if r.Empty() {
		return t
	}
	for _, f := range facts {
		if r.Contains(f.Date) {
			t.TotalRevenue = t.TotalRevenue.Add(f.Revenue)
			t.TotalSales++
		}
	}
	return t
}

// Compare totals both periods and reports p1 minus p2. The periods may
// overlap or come in any order.
func Compare(facts []domain.SaleFact, p1, p2 domain.Period) domain.PeriodComparison {
	t1 := Totals(facts, p1)
	t2 := Totals(facts, p2)
	return domain.PeriodComparison{
		Period1:           t1,
		Period2:           t2,
		RevenueDifference: t1.TotalRevenue.Sub(t2.TotalRevenue),
		SalesDifference:   t1.TotalSales - t2.TotalSales,
	}
}
