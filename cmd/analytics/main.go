// Command analytics prints sales rollups and stock reports and exports sales
// extracts, optionally to S3.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/andresuchdata/retailpulse/internal/bootstrap"
	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/ingest"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/andresuchdata/retailpulse/internal/period"
	"github.com/andresuchdata/retailpulse/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Log.Level)

	if err := newApp(cfg).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analytics failed")
	}
}

func newApp(cfg *config.Config) *cli.App {
	var repos *bootstrap.Repositories

	rangeFlags := []cli.Flag{
		&cli.StringFlag{Name: "start", Usage: "First day, YYYY-MM-DD"},
		&cli.StringFlag{Name: "end", Usage: "Last day, YYYY-MM-DD"},
	}

	return &cli.App{
		Name:  "analytics",
		Usage: "Sales and inventory reports",
		Before: func(c *cli.Context) error {
			var err error
			repos, err = bootstrap.OpenRepositories(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			c.App.Metadata = map[string]interface{}{
				"services": bootstrap.NewServices(cfg, repos, metrics.New()),
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if repos != nil {
				return repos.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "rollup",
				Usage: "Revenue and sale count per day, week, month or year",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "granularity", Aliases: []string{"g"}, Value: "day"},
					&cli.StringFlag{Name: "category"},
				}, rangeFlags...),
				Action: func(c *cli.Context) error {
					g, err := period.ParseGranularity(c.String("granularity"))
					if err != nil {
						return err
					}
					r, err := dateRange(c)
					if err != nil {
						return err
					}
					buckets, err := servicesFrom(c).Analytics.Aggregate(c.Context, g, r, c.String("category"))
					if err != nil {
						return err
					}
					return printJSON(buckets)
				},
			},
			{
				Name:  "categories",
				Usage: "Revenue and sale count per product category",
				Flags: rangeFlags,
				Action: func(c *cli.Context) error {
					r, err := dateRange(c)
					if err != nil {
						return err
					}
					totals, err := servicesFrom(c).Analytics.ByCategory(c.Context, r)
					if err != nil {
						return err
					}
					return printJSON(totals)
				},
			},
			{
				Name:  "compare",
				Usage: "Compare the totals of two periods",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "period1-start", Required: true},
					&cli.StringFlag{Name: "period1-end", Required: true},
					&cli.StringFlag{Name: "period2-start", Required: true},
					&cli.StringFlag{Name: "period2-end", Required: true},
				},
				Action: func(c *cli.Context) error {
					p1, err := periodFlags(c, "period1")
					if err != nil {
						return err
					}
					p2, err := periodFlags(c, "period2")
					if err != nil {
						return err
					}
					cmp, err := servicesFrom(c).Analytics.ComparePeriods(c.Context, p1, p2)
					if err != nil {
						return err
					}
					return printJSON(cmp)
				},
			},
			{
				Name:  "low-stock",
				Usage: "List items at or below their low-stock threshold",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "threshold", Usage: "Override every item's threshold", Value: -1},
					&cli.StringFlag{Name: "category"},
				},
				Action: func(c *cli.Context) error {
					var override *int
					if t := c.Int("threshold"); t >= 0 {
						override = &t
					}
					deficits, err := servicesFrom(c).Inventory.ScanLowStock(c.Context, override, c.String("category"))
					if err != nil {
						return err
					}
					return printJSON(deficits)
				},
			},
			{
				Name:  "summary",
				Usage: "Inventory totals",
				Action: func(c *cli.Context) error {
					summary, err := servicesFrom(c).Inventory.InventorySummary(c.Context)
					if err != nil {
						return err
					}
					return printJSON(summary)
				},
			},
			{
				Name:  "export",
				Usage: "Write sales as CSV or XLSX to a file or the S3 bucket",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "format", Value: string(ingest.FormatCSV), Usage: "csv or xlsx"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file"},
					&cli.BoolFlag{Name: "upload", Usage: "Upload to S3_BUCKET"},
					&cli.StringFlag{Name: "key", Usage: "Object key, derived from the range when empty"},
				}, rangeFlags...),
				Action: func(c *cli.Context) error {
					return runExport(c, cfg)
				},
			},
		},
	}
}

func runExport(c *cli.Context, cfg *config.Config) error {
	if !c.Bool("upload") && c.String("out") == "" {
		return errors.New("either --out or --upload is required")
	}
	r, err := dateRange(c)
	if err != nil {
		return err
	}

	filter := domain.SaleFilter{Range: r, Category: c.String("category")}
	out, err := renderExport(c.Context, servicesFrom(c).Sales, filter, ingest.Format(c.String("format")), c.String("key"))
	if err != nil {
		return err
	}

	if path := c.String("out"); path != "" {
		if err := os.WriteFile(path, out.Body, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Log.Info().Str("path", path).Int("rows", out.Rows).Msg("Export written")
	}

	if c.Bool("upload") {
		client, err := bootstrap.NewS3Client(cfg.Ingest)
		if err != nil {
			return err
		}
		if client == nil {
			return errors.New("S3_ENDPOINT is not configured")
		}
		if err := out.upload(c.Context, client); err != nil {
			return err
		}
		logger.Log.Info().
			Str("bucket", cfg.Ingest.S3Bucket).
			Str("key", out.Key).
			Int("rows", out.Rows).
			Msg("Export uploaded")
	}
	return nil
}

func servicesFrom(c *cli.Context) *bootstrap.Services {
	return c.App.Metadata["services"].(*bootstrap.Services)
}

func dateRange(c *cli.Context) (domain.DateRange, error) {
	var r domain.DateRange
	for name, dst := range map[string]**time.Time{"start": &r.Start, "end": &r.End} {
		s := c.String(name)
		if s == "" {
			continue
		}
		t, err := period.ParseDate(s)
		if err != nil {
			return r, fmt.Errorf("invalid --%s: %w", name, err)
		}
		*dst = &t
	}
	return r, nil
}

func periodFlags(c *cli.Context, prefix string) (domain.Period, error) {
	start, err := period.ParseDate(c.String(prefix + "-start"))
	if err != nil {
		return domain.Period{}, fmt.Errorf("invalid --%s-start: %w", prefix, err)
	}
	end, err := period.ParseDate(c.String(prefix + "-end"))
	if err != nil {
		return domain.Period{}, fmt.Errorf("invalid --%s-end: %w", prefix, err)
	}
	return domain.Period{Start: start, End: end}, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
