package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSalesQuery(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	productID := int64(7)

	tests := []struct {
		name     string
		filter   domain.SaleFilter
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:    "no filters",
			filter:  domain.SaleFilter{},
			wantSQL: "SELECT s.id, s.product_id, s.quantity, s.sale_date, s.revenue FROM sales s ORDER BY s.sale_date, s.id",
		},
		{
			name:   "category and range",
			filter: domain.SaleFilter{Category: "Electronics", Range: domain.DateRange{Start: &start, End: &end}, Offset: 5, Limit: 10},
			wantSQL: "SELECT s.id, s.product_id, s.quantity, s.sale_date, s.revenue FROM sales s " +
				"JOIN products p ON p.id = s.product_id " +
				"WHERE p.category = $1 AND s.sale_date >= $2 AND s.sale_date <= $3 " +
				"ORDER BY s.sale_date, s.id LIMIT 10 OFFSET 5",
			wantArgs: []interface{}{"Electronics", "2024-01-01", "2024-01-31"},
		},
		{
			name:     "product only",
			filter:   domain.SaleFilter{ProductID: &productID},
			wantSQL:  "SELECT s.id, s.product_id, s.quantity, s.sale_date, s.revenue FROM sales s WHERE s.product_id = $1 ORDER BY s.sale_date, s.id",
			wantArgs: []interface{}{int64(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildSalesQuery(tt.filter).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestBuildProductsQuery(t *testing.T) {
	sql, args, err := buildProductsQuery(domain.ProductFilter{Category: "Electronics", Name: "phone", Limit: 20}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name, price, category, description FROM products WHERE category = $1 AND name ILIKE $2 ORDER BY id LIMIT 20", sql)
	assert.Equal(t, []interface{}{"Electronics", "%phone%"}, args)
}

func TestBuildProductsQueryPriceBounds(t *testing.T) {
	lo, hi := decimal.NewFromInt(100), decimal.NewFromInt(500)
	sql, args, err := buildProductsQuery(domain.ProductFilter{MinPrice: &lo, MaxPrice: &hi}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name, price, category, description FROM products WHERE price >= $1 AND price <= $2 ORDER BY id", sql)
	assert.Len(t, args, 2)
}

func TestBuildInventoryQuery(t *testing.T) {
	sql, args, err := buildInventoryQuery(domain.InventoryFilter{Category: "Books", LowStockOnly: true}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT i.id, i.product_id, i.quantity, i.low_stock_threshold, i.last_updated, "+
		"p.name AS product_name, p.category FROM inventory i JOIN products p ON p.id = i.product_id "+
		"WHERE p.category = $1 AND i.quantity <= i.low_stock_threshold ORDER BY i.product_id", sql)
	assert.Equal(t, []interface{}{"Books"}, args)
}

func TestBuildProductUpdate(t *testing.T) {
	name, category := "Ultrabook", "Computers"
	sql, args, err := buildProductUpdate(3, domain.ProductUpdate{Name: &name, Category: &category}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE products SET category = $1, name = $2 WHERE id = $3 RETURNING id, name, price, category, description", sql)
	assert.Equal(t, []interface{}{"Computers", "Ultrabook", int64(3)}, args)
}

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements()
	require.Len(t, stmts, 7)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS products")
	assert.Contains(t, stmts[6], "product_id          BIGINT  NOT NULL UNIQUE")
}

func TestTranslateWriteError(t *testing.T) {
	err := translateWriteError(&pq.Error{Code: uniqueViolation}, "inventory", 4)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	err = translateWriteError(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: foreignKeyViolation}), "inventory", 4)
	assert.True(t, domain.IsNotFound(err))

	err = translateWriteError(errors.New("boom"), "inventory", 4)
	assert.False(t, domain.IsNotFound(err))
	assert.False(t, domain.IsConflict(err))
}
