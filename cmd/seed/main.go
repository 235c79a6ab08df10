package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/andresuchdata/retailpulse/internal/bootstrap"
	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/metrics"
	"github.com/andresuchdata/retailpulse/internal/repository/postgres"
	"github.com/andresuchdata/retailpulse/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	sqlDB, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := sqlDB.PingContext(c.Context); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db := postgres.Wrap(sqlx.NewDb(sqlDB, "pgx"), c.Int64("max-concurrent-tx"))
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("could not load .env file")
	}

	flags := []cli.Flag{
		newDBURLFlag(),
		&cli.Int64Flag{
			Name:  "max-concurrent-tx",
			Usage: "Maximum concurrent transactions",
			Value: 10,
		},
	}
	resetFlag := &cli.BoolFlag{
		Name:  "reset",
		Usage: "Remove existing products, sales and inventory first",
		Value: true,
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Create the schema and seed demo retail data",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create tables and indexes",
				Flags:  flags,
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:   "demo",
				Usage:  "Seed demo products, 30 days of sales and inventory",
				Flags:  append(flags, resetFlag),
				Before: initDB,
				After:  closeDB,
				Action: runDemo,
			},
			{
				Name:   "all",
				Usage:  "Migrate, then seed demo data",
				Flags:  append(flags, resetFlag),
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					if err := runMigrate(c); err != nil {
						return fmt.Errorf("error running migrations: %w", err)
					}
					if err := runDemo(c); err != nil {
						return fmt.Errorf("error seeding demo data: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if err := db.Migrate(c.Context); err != nil {
		return err
	}
	logger.Log.Info().Msg("Schema is up to date")
	return nil
}

func runDemo(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	cfg := config.Load()
	repos := &bootstrap.Repositories{
		Products:  postgres.NewProductRepository(db),
		Sales:     postgres.NewSaleRepository(db),
		Inventory: postgres.NewInventoryRepository(db),
	}
	services := bootstrap.NewServices(cfg, repos, metrics.New())

	if c.Bool("reset") {
		if err := db.Reset(c.Context); err != nil {
			return err
		}
		// Restarted ids would otherwise hit stale cached products.
		if err := services.Products.PurgeCache(c.Context); err != nil {
			return err
		}
	}

	start := time.Now()
	summary, err := seedDemo(c.Context, services.Products, services.Sales, services.Inventory, time.Now())
	if err != nil {
		return err
	}

	logger.Log.Info().
		Int("products", summary.Products).
		Int("sales", summary.Sales).
		Int("inventory", summary.Inventory).
		Dur("duration", time.Since(start)).
		Msg("Database seeded successfully")
	return nil
}
