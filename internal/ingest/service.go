package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/rs/zerolog/log"
)

var ErrUnknownSource = errors.New("unknown ingest source")

// SaleRecorder persists one validated sale.
type SaleRecorder interface {
	Record(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
}

// Report summarizes one ingested file.
type Report struct {
	Source   string      `json:"source"`
	Key      string      `json:"key"`
	Name     string      `json:"name"`
	Accepted int         `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
}

type FileFailure struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

type BatchReport struct {
	Source string        `json:"source"`
	Files  []Report      `json:"files"`
	Failed []FileFailure `json:"failed"`
}

type Service struct {
	recorder    SaleRecorder
	sources     map[string]Source
	metrics     *metrics.Metrics
	workerCount int
}

func NewService(recorder SaleRecorder, m *metrics.Metrics, workerCount int, sources ...Source) *Service {
	if workerCount < 1 {
		workerCount = 1
	}
	s := &Service{
		recorder:    recorder,
		sources:     make(map[string]Source, len(sources)),
		metrics:     m,
		workerCount: workerCount,
	}
	for _, src := range sources {
		s.sources[src.Name()] = src
	}
	return s
}

// Sources lists the configured source names in order.
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) source(name string) (Source, error) {
	src, ok := s.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return src, nil
}

// ListFiles returns the supported exports under location.
func (s *Service) ListFiles(ctx context.Context, sourceName, location string) ([]File, error) {
	src, err := s.source(sourceName)
	if err != nil {
		return nil, err
	}
	files, err := src.List(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("list %s files: %w", sourceName, err)
	}

	supported := make([]File, 0, len(files))
	for _, f := range files {
		if _, err := FormatOf(f.Name, f.MimeType); err == nil {
			supported = append(supported, f)
		}
	}
	return supported, nil
}

// IngestFile downloads one export and records every valid row as a sale.
// Rows the recorder rejects are reported; any other failure aborts the file.
func (s *Service) IngestFile(ctx context.Context, sourceName, key string) (*Report, error) {
	src, err := s.source(sourceName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var buf bytes.Buffer
	file, err := src.Fetch(ctx, key, &buf)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	format, err := FormatOf(file.Name, file.MimeType)
	if err != nil {
		return nil, err
	}
	rows, err := ReadRows(format, &buf)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseSales(rows)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Name, err)
	}

	report := &Report{
		Source:   sourceName,
		Key:      key,
		Name:     file.Name,
		Rejected: append([]Rejection{}, parsed.Rejected...),
	}
	for _, ps := range parsed.Sales {
		sale := ps.Sale
		if _, err := s.recorder.Record(ctx, &sale); err != nil {
			if domain.IsClientError(err) || domain.IsNotFound(err) {
				report.Rejected = append(report.Rejected, Rejection{Row: ps.Row, Reason: err.Error()})
				continue
			}
			s.metrics.RecordIngestRows(sourceName, report.Accepted, len(report.Rejected))
			return nil, fmt.Errorf("record row %d of %s: %w", ps.Row, file.Name, err)
		}
		report.Accepted++
	}
	sort.Slice(report.Rejected, func(i, j int) bool { return report.Rejected[i].Row < report.Rejected[j].Row })

	s.metrics.RecordIngestRows(sourceName, report.Accepted, len(report.Rejected))
	log.Info().
		Str("source", sourceName).
		Str("file", file.Name).
		Int("accepted", report.Accepted).
		Int("rejected", len(report.Rejected)).
		Dur("duration", time.Since(start)).
		Msg("ingest: file processed")
	return report, nil
}

// IngestLocation ingests every supported export under location using a pool
// of workers. A failed file is reported without stopping the others.
func (s *Service) IngestLocation(ctx context.Context, sourceName, location string) (*BatchReport, error) {
	files, err := s.ListFiles(ctx, sourceName, location)
	if err != nil {
		return nil, err
	}

	batch := &BatchReport{Source: sourceName, Files: []Report{}, Failed: []FileFailure{}}
	if len(files) == 0 {
		return batch, nil
	}

	workerCount := s.workerCount
	if workerCount > len(files) {
		workerCount = len(files)
	}

	jobChan := make(chan File, len(files))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for f := range jobChan {
				report, err := s.IngestFile(ctx, sourceName, f.Key)
				mu.Lock()
				if err != nil {
					log.Error().Err(err).Int("worker", workerID).Str("file", f.Name).Msg("ingest: file failed")
					batch.Failed = append(batch.Failed, FileFailure{Key: f.Key, Name: f.Name, Error: err.Error()})
				} else {
					batch.Files = append(batch.Files, *report)
				}
				mu.Unlock()
			}
		}(i)
	}

	for _, f := range files {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- f:
		}
	}
	close(jobChan)
	wg.Wait()

	sort.Slice(batch.Files, func(i, j int) bool { return batch.Files[i].Key < batch.Files[j].Key })
	sort.Slice(batch.Failed, func(i, j int) bool { return batch.Failed[i].Key < batch.Failed[j].Key })
	return batch, nil
}
