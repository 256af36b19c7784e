package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"order-manager/internal/domain"
)

// ListRiders returns every rider, newest first.
func (r *Repository) ListRiders(ctx context.Context) ([]Rider, error) {
	const q = `SELECT id, name, phone, is_active, created_at FROM riders ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list riders: %w", err)
	}
	defer rows.Close()

	riders := []Rider{}
	for rows.Next() {
		var rider Rider
		if err := rows.Scan(&rider.ID, &rider.Name, &rider.Phone, &rider.IsActive, &rider.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rider: %w", err)
		}
		riders = append(riders, rider)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate riders: %w", err)
	}
	return riders, nil
}

// ListActiveRiderPhones returns the normalized numbers of active riders, the
// default broadcast recipient list for new same-day orders.
func (r *Repository) ListActiveRiderPhones(ctx context.Context) ([]string, error) {
	const q = `SELECT phone FROM riders WHERE is_active = true ORDER BY created_at ASC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list active rider phones: %w", err)
	}
	defer rows.Close()

	phones := []string{}
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, fmt.Errorf("scan rider phone: %w", err)
		}
		phones = append(phones, phone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rider phones: %w", err)
	}
	return phones, nil
}

// InsertRider adds a rider. Phones are stored normalized and must be unique.
func (r *Repository) InsertRider(ctx context.Context, rider Rider) (*Rider, error) {
	const q = `
INSERT INTO riders (name, phone)
VALUES ($1, $2)
RETURNING id, name, phone, is_active, created_at;`

	var inserted Rider
	err := r.pool.QueryRow(ctx, q, rider.Name, rider.Phone).
		Scan(&inserted.ID, &inserted.Name, &inserted.Phone, &inserted.IsActive, &inserted.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("A rider with this phone number already exists.")
		}
		return nil, fmt.Errorf("insert rider: %w", err)
	}
	return &inserted, nil
}

// ToggleRider flips a rider's active flag.
func (r *Repository) ToggleRider(ctx context.Context, id int64) (*Rider, error) {
	const q = `
UPDATE riders SET is_active = NOT is_active
WHERE id = $1
RETURNING id, name, phone, is_active, created_at;`

	var rider Rider
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&rider.ID, &rider.Name, &rider.Phone, &rider.IsActive, &rider.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("toggle rider %d: %w", id, err)
	}
	return &rider, nil
}

// DeleteRider removes a rider.
func (r *Repository) DeleteRider(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM riders WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete rider %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
