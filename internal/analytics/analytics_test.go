package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fact(at time.Time, revenue string) domain.SaleFact {
	return domain.SaleFact{ProductID: 1, Category: "Electronics", Date: at, Quantity: 1, Revenue: decimal.RequireFromString(revenue)}
}

func TestAggregateDaily(t *testing.T) {
	facts := []domain.SaleFact{
		fact(day(2024, 1, 2), "30"),
		fact(day(2024, 1, 1), "100"),
		fact(day(2024, 1, 1), "50"),
	}

	got := Aggregate(facts, AggregateOptions{Granularity: period.Day})

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Key)
	assert.True(t, got[0].TotalRevenue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 2, got[0].TotalSales)
	assert.Equal(t, "2024-01-02", got[1].Key)
	assert.True(t, got[1].TotalRevenue.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 1, got[1].TotalSales)
}

func TestAggregateIsSparseAndCountsTransactions(t *testing.T) {
	f := fact(day(2024, 1, 1), "10")
	f.Quantity = 7
	facts := []domain.SaleFact{f, fact(day(2024, 1, 10), "5")}

	got := Aggregate(facts, AggregateOptions{Granularity: period.Day})

	require.Len(t, got, 2, "days without sales are not emitted")
	assert.Equal(t, 1, got[0].TotalSales)
}

func TestAggregateMonthlyOrdersNumerically(t *testing.T) {
	facts := []domain.SaleFact{
		fact(day(2024, 10, 3), "1"),
		fact(day(2024, 9, 3), "1"),
		fact(day(2024, 2, 3), "1"),
	}

	got := Aggregate(facts, AggregateOptions{Granularity: period.Month})

	keys := make([]string, len(got))
	for i, b := range got {
		keys[i] = b.Key
	}
	assert.Equal(t, []string{"2024-2", "2024-9", "2024-10"}, keys)
}

func TestAggregateFilters(t *testing.T) {
	books := fact(day(2024, 1, 5), "40")
	books.Category = "Books"
	facts := []domain.SaleFact{
		fact(day(2023, 12, 31), "1"),
		fact(day(2024, 1, 1), "2"),
		books,
		fact(day(2024, 1, 31), "4"),
		fact(day(2024, 2, 1), "8"),
	}
	start, end := day(2024, 1, 1), day(2024, 1, 31)

	got := Aggregate(facts, AggregateOptions{
		Granularity: period.Year,
		Range:       domain.DateRange{Start: &start, End: &end},
		Category:    "Electronics",
	})

	require.Len(t, got, 1)
	assert.Equal(t, "2024", got[0].Key)
	assert.True(t, got[0].TotalRevenue.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 2, got[0].TotalSales)

	onlyEnd := Aggregate(facts, AggregateOptions{Granularity: period.Year, Range: domain.DateRange{End: &start}})
	require.Len(t, onlyEnd, 2)
	assert.Equal(t, "2023", onlyEnd[0].Key)
}

func TestAggregateInvertedRangeIsEmpty(t *testing.T) {
	start, end := day(2024, 2, 1), day(2024, 1, 1)
	got := Aggregate([]domain.SaleFact{fact(day(2024, 1, 15), "1")}, AggregateOptions{
		Granularity: period.Day,
		Range:       domain.DateRange{Start: &start, End: &end},
	})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func randomFacts(r *rand.Rand, n int) []domain.SaleFact {
	facts := make([]domain.SaleFact, n)
	base := day(2022, 1, 1)
	for i := range facts {
		facts[i] = domain.SaleFact{
			ProductID: int64(r.Intn(5) + 1),
			Category:  []string{"Electronics", "Books"}[r.Intn(2)],
			Date:      base.AddDate(0, 0, r.Intn(900)),
			Quantity:  r.Intn(3) + 1,
			Revenue:   decimal.New(int64(r.Intn(100000)), -2),
		}
	}
	return facts
}

func TestAggregateCompleteness(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	facts := randomFacts(r, 500)
	start, end := day(2022, 6, 1), day(2023, 8, 31)
	rng := domain.DateRange{Start: &start, End: &end}

	wantRevenue, wantSales := decimal.Zero, 0
	for _, f := range facts {
		if rng.Contains(f.Date) {
			wantRevenue = wantRevenue.Add(f.Revenue)
			wantSales++
		}
	}

	for _, g := range []period.Granularity{period.Day, period.Week, period.Month, period.Year} {
		buckets := Aggregate(facts, AggregateOptions{Granularity: g, Range: rng})
		gotRevenue, gotSales := decimal.Zero, 0
		for _, b := range buckets {
			gotRevenue = gotRevenue.Add(b.TotalRevenue)
			gotSales += b.TotalSales
		}
		assert.True(t, wantRevenue.Equal(gotRevenue), "granularity %s", g)
		assert.Equal(t, wantSales, gotSales, "granularity %s", g)
	}
}

func TestAggregateByCategory(t *testing.T) {
	books := fact(day(2024, 1, 5), "40")
	books.Category = "Books"
	got := AggregateByCategory([]domain.SaleFact{fact(day(2024, 1, 1), "10"), books, fact(day(2024, 1, 2), "5")}, domain.DateRange{})

	require.Len(t, got, 2)
	assert.Equal(t, "Books", got[0].Category)
	assert.Equal(t, "Electronics", got[1].Category)
	assert.True(t, got[1].TotalRevenue.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 2, got[1].TotalSales)
}

func TestTopProducts(t *testing.T) {
	mk := func(id int64, revenue string, qty int) domain.SaleFact {
		f := fact(day(2024, 1, 1), revenue)
		f.ProductID = id
		f.Quantity = qty
		return f
	}
	facts := []domain.SaleFact{mk(3, "100", 1), mk(1, "50", 2), mk(2, "100", 4), mk(1, "20", 1)}

	got := TopProducts(facts, domain.DateRange{}, 2)

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ProductID, "ties go to the lower id")
	assert.Equal(t, int64(3), got[1].ProductID)

	all := TopProducts(facts, domain.DateRange{}, 0)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[2].ProductID)
	assert.Equal(t, 3, all[2].TotalQuantity)
	assert.True(t, all[2].TotalRevenue.Equal(decimal.NewFromInt(70)))
}

func TestCompareEmptyPeriods(t *testing.T) {
	p1 := domain.Period{Start: day(2024, 1, 1), End: day(2024, 1, 31)}
	p2 := domain.Period{Start: day(2024, 2, 1), End: day(2024, 2, 29)}

	got := Compare(nil, p1, p2)

	assert.True(t, got.Period1.TotalRevenue.IsZero())
	assert.Equal(t, 0, got.Period1.TotalSales)
	assert.True(t, got.Period2.TotalRevenue.IsZero())
	assert.True(t, got.RevenueDifference.IsZero())
	assert.Equal(t, 0, got.SalesDifference)
}

func TestComparePeriodOneMinusPeriodTwo(t *testing.T) {
	facts := []domain.SaleFact{
		fact(day(2024, 1, 10), "100"),
		fact(day(2024, 2, 10), "30"),
		fact(day(2024, 2, 11), "20"),
	}
	jan := domain.Period{Start: day(2024, 1, 1), End: day(2024, 1, 31)}
	feb := domain.Period{Start: day(2024, 2, 1), End: day(2024, 2, 29)}

	got := Compare(facts, jan, feb)

	assert.True(t, got.RevenueDifference.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, -1, got.SalesDifference)
	assert.Equal(t, jan, got.Period1.Period)
}

func TestCompareSymmetry(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	facts := randomFacts(r, 300)

	for i := 0; i < 20; i++ {
		a := domain.Period{Start: day(2022, 1, 1).AddDate(0, 0, r.Intn(400))}
		a.End = a.Start.AddDate(0, 0, r.Intn(200))
		b := domain.Period{Start: day(2022, 1, 1).AddDate(0, 0, r.Intn(400))}
		b.End = b.Start.AddDate(0, 0, r.Intn(200))

		ab := Compare(facts, a, b)
		ba := Compare(facts, b, a)
		assert.True(t, ab.RevenueDifference.Equal(ba.RevenueDifference.Neg()))
		assert.Equal(t, ab.SalesDifference, -ba.SalesDifference)
	}
}

func TestTotalsInvertedPeriod(t *testing.T) {
	got := Totals([]domain.SaleFact{fact(day(2024, 1, 10), "100")},
		domain.Period{Start: day(2024, 1, 31), End: day(2024, 1, 1)})
	assert.True(t, got.TotalRevenue.IsZero())
	assert.Equal(t, 0, got.TotalSales)
}
