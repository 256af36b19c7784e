package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"order-manager/internal/domain"
)

const nairobiColumns = `id, customer_first_name, customer_full_name, phone, alt_phone,
address, product, amount_payable, status, assigned_to, assigned_phone, assigned_at,
created_at, updated_at`

func scanNairobiOrder(row pgx.Row) (*NairobiOrder, error) {
	var n NairobiOrder
	err := row.Scan(&n.ID, &n.CustomerFirstName, &n.CustomerFullName, &n.Phone, &n.AltPhone,
		&n.Address, &n.Product, &n.AmountPayable, &n.Status, &n.AssignedTo, &n.AssignedPhone, &n.AssignedAt,
		&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// InsertNairobiOrder stores a new same-day order; status starts unassigned.
func (r *Repository) InsertNairobiOrder(ctx context.Context, order NairobiOrder) (*NairobiOrder, error) {
	q := `
INSERT INTO nairobi_orders (customer_first_name, customer_full_name, phone, alt_phone, address, product, amount_payable)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + nairobiColumns + `;`

	inserted, err := scanNairobiOrder(r.pool.QueryRow(ctx, q,
		order.CustomerFirstName, order.CustomerFullName, order.Phone, order.AltPhone,
		order.Address, order.Product, order.AmountPayable))
	if err != nil {
		return nil, fmt.Errorf("insert nairobi order: %w", err)
	}
	return inserted, nil
}

// GetNairobiOrder retrieves a same-day order by id.
func (r *Repository) GetNairobiOrder(ctx context.Context, id int64) (*NairobiOrder, error) {
	q := `SELECT ` + nairobiColumns + ` FROM nairobi_orders WHERE id = $1;`
	order, err := scanNairobiOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get nairobi order %d: %w", id, err)
	}
	return order, nil
}

// ListNairobiOrders returns same-day orders, optionally filtered by status,
// newest first.
func (r *Repository) ListNairobiOrders(ctx context.Context, status string) ([]NairobiOrder, error) {
	q := `SELECT ` + nairobiColumns + ` FROM nairobi_orders`
	params := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		params = append(params, status)
	}
	q += ` ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, q, params...)
	if err != nil {
		return nil, fmt.Errorf("list nairobi orders: %w", err)
	}
	defer rows.Close()

	orders := []NairobiOrder{}
	for rows.Next() {
		order, err := scanNairobiOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan nairobi order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nairobi orders: %w", err)
	}
	return orders, nil
}

// ClaimNairobiOrder atomically assigns an unassigned same-day order to a
// rider. The WHERE clause carries the claim-once guarantee: a concurrent
// second claim matches zero rows and is reported as a conflict with the
// current assignment left untouched. A blank rider name is stored as NULL.
func (r *Repository) ClaimNairobiOrder(ctx context.Context, id int64, riderName, riderPhone string) (*NairobiOrder, error) {
	q := `
UPDATE nairobi_orders
SET status = 'assigned', assigned_to = NULLIF($2, ''), assigned_phone = $3, assigned_at = NOW(), updated_at = NOW()
WHERE id = $1 AND status = 'unassigned'
RETURNING ` + nairobiColumns + `;`

	order, err := scanNairobiOrder(r.pool.QueryRow(ctx, q, id, riderName, riderPhone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing order from one already claimed.
			if _, getErr := r.GetNairobiOrder(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.Conflict("This order has already been assigned to another rider.")
		}
		return nil, fmt.Errorf("claim nairobi order %d: %w", id, err)
	}
	return order, nil
}

// SetNairobiOrderDelivered marks an assigned order delivered. The
// conditional write keeps the assigned-fields invariant: only an assigned
// order can become delivered.
func (r *Repository) SetNairobiOrderDelivered(ctx context.Context, id int64) (*NairobiOrder, error) {
	q := `
UPDATE nairobi_orders
SET status = 'delivered', updated_at = NOW()
WHERE id = $1 AND status = 'assigned'
RETURNING ` + nairobiColumns + `;`

	order, err := scanNairobiOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetNairobiOrder(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.Conflict("Only an assigned order can be marked delivered.")
		}
		return nil, fmt.Errorf("deliver nairobi order %d: %w", id, err)
	}
	return order, nil
}

// ResetNairobiOrder puts an assigned order back to unassigned, clearing the
// rider assignment. Delivered is terminal, so the conditional write refuses
// to resurrect a delivered order.
func (r *Repository) ResetNairobiOrder(ctx context.Context, id int64) (*NairobiOrder, error) {
	q := `
UPDATE nairobi_orders
SET status = 'unassigned', assigned_to = NULL, assigned_phone = NULL, assigned_at = NULL, updated_at = NOW()
WHERE id = $1 AND status = 'assigned'
RETURNING ` + nairobiColumns + `;`

	order, err := scanNairobiOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetNairobiOrder(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.Conflict("Only an assigned order can be reset to unassigned.")
		}
		return nil, fmt.Errorf("reset nairobi order %d: %w", id, err)
	}
	return order, nil
}
