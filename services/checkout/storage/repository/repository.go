// Package repository provides access to data available in SQL-based data store.
package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/agrojardin/checkout/services/checkout/model"
)

type Product struct{}

func NewProduct() *Product { return &Product{} }

// FindByIDs returns the products with the given ids. Ids without a product
// are skipped; the result is ordered by id.
func (r *Product) FindByIDs(ctx context.Context, dbi sqlx.QueryerContext, ids []int64) ([]model.Product, error) {
	const q = `SELECT id, name, description, price
	FROM products WHERE id = ANY($1)
	ORDER BY id`

	result := make([]model.Product, 0, len(ids))
	if err := sqlx.SelectContext(ctx, dbi, &result, q, pq.Array(ids)); err != nil {
		return nil, err
	}

	return result, nil
}
