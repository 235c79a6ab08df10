package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRangeContains(t *testing.T) {
	start, end := date(2024, 3, 1), date(2024, 3, 31)

	tests := []struct {
		name string
		r    DateRange
		at   time.Time
		want bool
	}{
		{"open", DateRange{}, date(1999, 1, 1), true},
		{"on start", DateRange{Start: &start}, start, true},
		{"before start", DateRange{Start: &start}, date(2024, 2, 29), false},
		{"on end with time of day", DateRange{End: &end}, end.Add(23 * time.Hour), true},
		{"after end", DateRange{Start: &start, End: &end}, date(2024, 4, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.at))
		})
	}
}

func TestDateRangeEmpty(t *testing.T) {
	a, b := date(2024, 3, 1), date(2024, 2, 1)
	assert.True(t, DateRange{Start: &a, End: &b}.Empty())
	assert.False(t, DateRange{Start: &b, End: &a}.Empty())
	assert.False(t, DateRange{Start: &a}.Empty())
}

func TestErrorKinds(t *testing.T) {
	nf := fmt.Errorf("load: %w", &NotFoundError{Entity: "inventory", ID: 4})
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsClientError(nf))
	assert.EqualError(t, errors.Unwrap(nf), "inventory 4 not found")

	adj := &InvalidAdjustmentError{ProductID: 1, Current: 6, Delta: -10}
	assert.ErrorIs(t, adj, ErrInvalidAdjustment)
	assert.True(t, IsClientError(adj))

	assert.True(t, IsClientError(NewValidationError("quantity", "must be positive")))
	assert.True(t, IsConflict(fmt.Errorf("%w: inventory for product 1", ErrAlreadyExists)))
}

func TestProductUpdateApply(t *testing.T) {
	p := Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("999.99"), Category: "Electronics"}
	name := "Ultrabook"
	price := decimal.RequireFromString("1099.00")

	u := ProductUpdate{Name: &name, Price: &price}
	assert.False(t, u.IsEmpty())
	u.Apply(&p)

	assert.Equal(t, "Ultrabook", p.Name)
	assert.True(t, p.Price.Equal(price))
	assert.Equal(t, "Electronics", p.Category)
	assert.True(t, ProductUpdate{}.IsEmpty())
}
