package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/repository"
	"github.com/jmoiron/sqlx"
)

var _ repository.InventoryRepository = (*InventoryRepository)(nil)

type InventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, inv *domain.Inventory) error {
	query, args, err := psql.Insert("inventory").
		Columns("product_id", "quantity", "low_stock_threshold", "last_updated").
		Values(inv.ProductID, inv.Quantity, inv.LowStockThreshold, inv.LastUpdated.Format("2006-01-02")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert inventory: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&inv.ID); err != nil {
		return translateWriteError(err, "inventory", inv.ProductID)
	}
	return nil
}

func (r *InventoryRepository) GetByProduct(ctx context.Context, productID int64) (*domain.Inventory, error) {
	return r.getBy(ctx, r.db, squirrel.Eq{"product_id": productID}, productID, "")
}

func (r *InventoryRepository) getBy(ctx context.Context, q sqlx.QueryerContext, where squirrel.Eq, id int64, suffix string) (*domain.Inventory, error) {
	b := psql.Select(inventoryColumns...).From("inventory").Where(where)
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get inventory: %w", err)
	}

	var inv domain.Inventory
	if err := sqlx.GetContext(ctx, q, &inv, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "inventory", ID: id}
		}
		return nil, fmt.Errorf("error getting inventory: %w", err)
	}
	return &inv, nil
}

func (r *InventoryRepository) List(ctx context.Context, f domain.InventoryFilter) ([]domain.StockItem, error) {
	query, args, err := buildInventoryQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list inventory: %w", err)
	}

	items := []domain.StockItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("error listing inventory: %w", err)
	}
	return items, nil
}

// Update locks the product's row with SELECT ... FOR UPDATE for the length of
// the transaction, so concurrent updates of one product queue on the row lock.
func (r *InventoryRepository) Update(ctx context.Context, productID int64, fn repository.InventoryUpdateFunc) (*domain.Inventory, error) {
	var updated *domain.Inventory

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := r.getBy(ctx, tx, squirrel.Eq{"product_id": productID}, productID, "FOR UPDATE")
		if err != nil {
			return err
		}

		next := *current
		if err := fn(&next); err != nil {
			return err
		}

		query, args, err := psql.Update("inventory").
			Set("quantity", next.Quantity).
			Set("low_stock_threshold", next.LowStockThreshold).
			Set("last_updated", next.LastUpdated.Format("2006-01-02")).
			Where(squirrel.Eq{"id": current.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update inventory: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error updating inventory for product %d: %w", productID, err)
		}

		next.ID, next.ProductID = current.ID, current.ProductID
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
