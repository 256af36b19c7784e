package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"order-manager/internal/domain"
)

// ProductIDBySKU finds a product by exact case-insensitive SKU.
// Returns nil on a miss.
func (r *Repository) ProductIDBySKU(ctx context.Context, sku string) (*int64, error) {
	const q = `SELECT id FROM products WHERE LOWER(sku) = LOWER($1);`
	var id int64
	if err := r.pool.QueryRow(ctx, q, sku).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("product by sku: %w", err)
	}
	return &id, nil
}

// ProductIDByName finds a product by exact case-insensitive name.
// Returns nil on a miss.
func (r *Repository) ProductIDByName(ctx context.Context, name string) (*int64, error) {
	const q = `SELECT id FROM products WHERE LOWER(name) = LOWER($1);`
	var id int64
	if err := r.pool.QueryRow(ctx, q, name).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("product by name: %w", err)
	}
	return &id, nil
}

// ProductName returns the canonical display name for a product id, or nil
// when the id is unknown.
func (r *Repository) ProductName(ctx context.Context, id int64) (*string, error) {
	const q = `SELECT name FROM products WHERE id = $1;`
	var name string
	if err := r.pool.QueryRow(ctx, q, id).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("product name: %w", err)
	}
	return &name, nil
}

// ListProducts returns all products with their inventory quantity, newest
// first.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	const q = `
SELECT p.id, p.name, p.sku, p.description, COALESCE(i.quantity, 0), p.created_at
FROM products p
LEFT JOIN inventory i ON p.id = i.product_id
ORDER BY p.created_at DESC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Quantity, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// InsertProduct adds a catalog entry. A duplicate name or SKU is reported as
// a conflict.
func (r *Repository) InsertProduct(ctx context.Context, product Product) (*Product, error) {
	const q = `
INSERT INTO products (name, sku, description)
VALUES ($1, $2, $3)
RETURNING id, name, sku, description, created_at;`

	var p Product
	err := r.pool.QueryRow(ctx, q, product.Name, product.SKU, product.Description).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("A product with this name or SKU already exists.")
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

// UpdateProduct overwrites a catalog entry.
func (r *Repository) UpdateProduct(ctx context.Context, product Product) (*Product, error) {
	const q = `
UPDATE products SET name = $1, sku = $2, description = $3
WHERE id = $4
RETURNING id, name, sku, description, created_at;`

	var p Product
	err := r.pool.QueryRow(ctx, q, product.Name, product.SKU, product.Description, product.ID).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.Conflict("A product with this name or SKU already exists.")
		}
		return nil, fmt.Errorf("update product %d: %w", product.ID, err)
	}
	return &p, nil
}

// DeleteProduct hard-deletes a catalog entry. Orders referencing it fall
// back to a null product link; further cleanup is out of scope.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
