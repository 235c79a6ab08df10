package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("sales-2024-01.CSV", "")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatOf("export", mimeXLSX)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatOf("notes.txt", "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseSales(t *testing.T) {
	rows := [][]string{
		{" Product_ID ", "quantity", "sale_date", "revenue"},
		{"1", "2", "2024-01-01", "199.98"},
		{"1", "0", "2024-01-01", "0"},
		{"", "", "", ""},
		{"x", "1", "2024-01-01", "5"},
		{"2", "1", "01/02/2024", "5"},
		{"2", "1", "", "12.5"},
	}

	parsed, err := ParseSales(rows)
	require.NoError(t, err)
	require.Len(t, parsed.Sales, 2)

	first := parsed.Sales[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, int64(1), first.Sale.ProductID)
	assert.Equal(t, 2, first.Sale.Quantity)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Sale.SaleDate)
	assert.True(t, first.Sale.Revenue.Equal(decimal.RequireFromString("199.98")))

	assert.True(t, parsed.Sales[1].Sale.SaleDate.IsZero())

	rejectedRows := make([]int, 0, len(parsed.Rejected))
	for _, r := range parsed.Rejected {
		rejectedRows = append(rejectedRows, r.Row)
	}
	assert.Equal(t, []int{3, 5, 6}, rejectedRows)
	assert.Contains(t, parsed.Rejected[0].Reason, "quantity")
}

func TestParseSalesMissingColumn(t *testing.T) {
	_, err := ParseSales([][]string{{"product_id", "quantity"}})
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ParseSales(nil)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func sampleSales() []domain.Sale {
	return []domain.Sale{
		{ProductID: 1, Quantity: 2, SaleDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Revenue: decimal.RequireFromString("199.98")},
		{ProductID: 3, Quantity: 1, SaleDate: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), Revenue: decimal.RequireFromString("149.99")},
	}
}

func TestCSVExportIsReadable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSales()))
	assert.True(t, strings.HasPrefix(buf.String(), "product_id,quantity,sale_date,revenue\n"))

	rows, err := ReadRows(FormatCSV, &buf)
	require.NoError(t, err)
	parsed, err := ParseSales(rows)
	require.NoError(t, err)
	require.Len(t, parsed.Sales, 2)
	assert.Equal(t, int64(3), parsed.Sales[1].Sale.ProductID)
	assert.Empty(t, parsed.Rejected)
}

func TestXLSXExportIsReadable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleSales()))

	rows, err := ReadRows(FormatXLSX, &buf)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"product_id", "quantity", "sale_date", "revenue"}, rows[0])

	parsed, err := ParseSales(rows)
	require.NoError(t, err)
	require.Len(t, parsed.Sales, 2)
	assert.Equal(t, 2, parsed.Sales[0].Sale.Quantity)
	assert.True(t, parsed.Sales[1].Sale.Revenue.Equal(decimal.RequireFromString("149.99")))
}

func TestReadRowsRejectsUnknownFormat(t *testing.T) {
	_, err := ReadRows(Format("ods"), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
