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

var _ repository.ProductRepository = (*ProductRepository)(nil)

type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query, args, err := psql.Insert("products").
		Columns("name", "price", "category", "description").
		Values(p.Name, p.Price, p.Category, p.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get product: %w", err)
	}

	var p domain.Product
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "product", ID: id}
		}
		return nil, fmt.Errorf("error getting product %d: %w", id, err)
	}
	return &p, nil
}

func (r *ProductRepository) CategoryOf(ctx context.Context, id int64) (string, error) {
	var category string
	err := r.db.GetContext(ctx, &category, "SELECT category FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &domain.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return "", fmt.Errorf("error getting category of product %d: %w", id, err)
	}
	return category, nil
}

func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	query, args, err := buildProductsQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products: %w", err)
	}

	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, id int64, u domain.ProductUpdate) (*domain.Product, error) {
	if u.IsEmpty() {
		return r.Get(ctx, id)
	}

	query, args, err := buildProductUpdate(id, u).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update product: %w", err)
	}

	var p domain.Product
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "product", ID: id}
		}
		return nil, fmt.Errorf("error updating product %d: %w", id, err)
	}
	return &p, nil
}
