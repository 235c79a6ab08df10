package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/andresuchdata/retailpulse/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var (
	productColumns   = []string{"id", "name", "price", "category", "description"}
	saleColumns      = []string{"s.id", "s.product_id", "s.quantity", "s.sale_date", "s.revenue"}
	inventoryColumns = []string{"id", "product_id", "quantity", "low_stock_threshold", "last_updated"}
	stockItemColumns = []string{
		"i.id", "i.product_id", "i.quantity", "i.low_stock_threshold", "i.last_updated",
		"p.name AS product_name", "p.category",
	}
)

func buildProductsQuery(f domain.ProductFilter) squirrel.SelectBuilder {
	q := psql.Select(productColumns...).From("products")
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.MinPrice != nil {
		q = q.Where(squirrel.GtOrEq{"price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		q = q.Where(squirrel.LtOrEq{"price": *f.MaxPrice})
	}
	if f.Name != "" {
		q = q.Where(squirrel.ILike{"name": "%" + f.Name + "%"})
	}
	if f.Description != "" {
		q = q.Where(squirrel.ILike{"description": "%" + f.Description + "%"})
	}
	return paginate(q.OrderBy("id"), f.Offset, f.Limit)
}

func buildSalesQuery(f domain.SaleFilter) squirrel.SelectBuilder {
	q := psql.Select(saleColumns...).From("sales s")
	if f.Category != "" {
		q = q.Join("products p ON p.id = s.product_id").
			Where(squirrel.Eq{"p.category": f.Category})
	}
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"s.product_id": *f.ProductID})
	}
	if f.Range.Start != nil {
		q = q.Where(squirrel.GtOrEq{"s.sale_date": f.Range.Start.Format("2006-01-02")})
	}
	if f.Range.End != nil {
		q = q.Where(squirrel.LtOrEq{"s.sale_date": f.Range.End.Format("2006-01-02")})
	}
	return paginate(q.OrderBy("s.sale_date", "s.id"), f.Offset, f.Limit)
}

func buildInventoryQuery(f domain.InventoryFilter) squirrel.SelectBuilder {
	q := psql.Select(stockItemColumns...).
		From("inventory i").
		Join("products p ON p.id = i.product_id")
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"i.product_id": *f.ProductID})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"p.category": f.Category})
	}
	if f.LowStockOnly {
		q = q.Where("i.quantity <= i.low_stock_threshold")
	}
	return paginate(q.OrderBy("i.product_id"), f.Offset, f.Limit)
}

func buildProductUpdate(id int64, u domain.ProductUpdate) squirrel.UpdateBuilder {
	set := map[string]interface{}{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	return psql.Update("products").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, price, category, description")
}

func paginate(q squirrel.SelectBuilder, offset, limit int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}
