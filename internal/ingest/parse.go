package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingColumn     = errors.New("missing required column")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var requiredColumns = []string{"product_id", "quantity", "revenue"}

// FormatOf detects the export format from a file name, falling back to its
// MIME type.
func FormatOf(name, mimeType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	switch mimeType {
	case mimeCSV:
		return FormatCSV, nil
	case mimeXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// ReadRows decodes the raw export into rows, header first.
func ReadRows(format Format, r io.Reader) ([][]string, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// readXLSX reads the first sheet of a workbook.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		out = append(out, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", sheet, err)
	}
	return out, nil
}

// Rejection is a row that could not be turned into a sale. Row is 1-based and
// counts the header.
type Rejection struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type ParsedSale struct {
	Row  int
	Sale domain.Sale
}

type Parsed struct {
	Sales    []ParsedSale
	Rejected []Rejection
}

// ParseSales maps header columns product_id, quantity, revenue and optional
// sale_date onto sales. Bad rows are rejected individually; a missing
// required column fails the whole file.
func ParseSales(rows [][]string) (Parsed, error) {
	var parsed Parsed
	if len(rows) == 0 {
		return parsed, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}

	colMap := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return parsed, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	for i, record := range rows[1:] {
		row := i + 2
		if isBlank(record) {
			continue
		}
		sale, err := parseSale(record, colMap)
		if err != nil {
			parsed.Rejected = append(parsed.Rejected, Rejection{Row: row, Reason: err.Error()})
			continue
		}
		parsed.Sales = append(parsed.Sales, ParsedSale{Row: row, Sale: sale})
	}
	return parsed, nil
}

func parseSale(record []string, colMap map[string]int) (domain.Sale, error) {
	getValue := func(colName string) string {
		if idx, ok := colMap[colName]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var sale domain.Sale
	productID, err := strconv.ParseInt(getValue("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return sale, domain.NewValidationError("product_id", "must be a positive integer")
	}
	quantity, err := strconv.Atoi(getValue("quantity"))
	if err != nil {
		return sale, domain.NewValidationError("quantity", "must be an integer")
	}
	if quantity <= 0 {
		return sale, domain.NewValidationError("quantity", "must be positive")
	}
	revenue, err := decimal.NewFromString(getValue("revenue"))
	if err != nil {
		return sale, domain.NewValidationError("revenue", "must be a number")
	}

	sale.ProductID = productID
	sale.Quantity = quantity
	sale.Revenue = revenue
	if raw := getValue("sale_date"); raw != "" {
		date, err := period.ParseDate(raw)
		if err != nil {
			return sale, domain.NewValidationError("sale_date", "must be YYYY-MM-DD")
		}
		sale.SaleDate = date
	}
	return sale, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteCSV renders sales in the column layout ParseSales reads.
func WriteCSV(w io.Writer, sales []domain.Sale) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product_id", "quantity", "sale_date", "revenue"}); err != nil {
		return err
	}
	for _, s := range sales {
		record := []string{
			strconv.FormatInt(s.ProductID, 10),
			strconv.Itoa(s.Quantity),
			s.SaleDate.Format("2006-01-02"),
			s.Revenue.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders sales as a single-sheet workbook.
func WriteXLSX(w io.Writer, sales []domain.Sale) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"product_id", "quantity", "sale_date", "revenue"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, s := range sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{s.ProductID, s.Quantity, s.SaleDate.Format("2006-01-02"), s.Revenue.String()}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
