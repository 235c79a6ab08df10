package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/andresuchdata/retailpulse/internal/repository"
)

var _ repository.SaleRepository = (*SaleRepository)(nil)

type SaleRepository struct {
	db *DB
}

func NewSaleRepository(db *DB) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) error {
	query, args, err := psql.Insert("sales").
		Columns("product_id", "quantity", "sale_date", "revenue").
		Values(s.ProductID, s.Quantity, s.SaleDate.Format("2006-01-02"), s.Revenue).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert sale: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&s.ID); err != nil {
		if sqlState(err) == foreignKeyViolation {
			return &domain.NotFoundError{Entity: "product", ID: s.ProductID}
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	query, args, err := psql.Select(saleColumns...).
		From("sales s").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get sale: %w", err)
	}

	var s domain.Sale
	if err := r.db.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "sale", ID: id}
		}
		return nil, fmt.Errorf("error getting sale %d: %w", id, err)
	}
	return &s, nil
}

func (r *SaleRepository) List(ctx context.Context, f domain.SaleFilter) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	if f.Range.Empty() {
		return sales, nil
	}

	query, args, err := buildSalesQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sales: %w", err)
	}

	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, fmt.Errorf("error listing sales: %w", err)
	}
	return sales, nil
}
