package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/ingest"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type saleLister interface {
	List(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
}

type uploader interface {
	UploadObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// export is one rendered sales extract.
type export struct {
	Key         string
	ContentType string
	Rows        int
	Body        []byte
}

// renderExport writes the sales matching filter in the requested format. The
// object key is derived from the range when key is empty.
func renderExport(ctx context.Context, sales saleLister, filter domain.SaleFilter, format ingest.Format, key string) (*export, error) {
	rows, err := sales.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	var buf bytes.Buffer
	out := &export{Key: key, Rows: len(rows)}
	switch format {
	case ingest.FormatCSV:
		err = ingest.WriteCSV(&buf, rows)
		out.ContentType = contentTypeCSV
	case ingest.FormatXLSX:
		err = ingest.WriteXLSX(&buf, rows)
		out.ContentType = contentTypeXLSX
	default:
		return nil, fmt.Errorf("%w: %q", ingest.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", format, err)
	}
	out.Body = buf.Bytes()

	if out.Key == "" {
		out.Key = exportKey(filter.Range, format)
	}
	return out, nil
}

func exportKey(r domain.DateRange, format ingest.Format) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "all"
		}
		return t.Format("20060102")
	}
	return fmt.Sprintf("exports/sales_%s_%s.%s", bound(r.Start), bound(r.End), format)
}

func (e *export) upload(ctx context.Context, u uploader) error {
	return u.UploadObject(ctx, e.Key, bytes.NewReader(e.Body), int64(len(e.Body)), e.ContentType)
}
