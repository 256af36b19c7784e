package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"order-manager/internal/domain"
)

// GetActiveWebsiteByKey looks up an active storefront by its webhook key.
// An unknown key or an inactive storefront both come back as not found; the
// webhook key is the sole authentication for inbound submissions.
func (r *Repository) GetActiveWebsiteByKey(ctx context.Context, webhookKey string) (*Website, error) {
	const q = `
SELECT id, name, webhook_key, contact_email, contact_phone, website_url, is_active, created_at
FROM websites
WHERE webhook_key = $1 AND is_active = true;`

	var w Website
	err := r.pool.QueryRow(ctx, q, webhookKey).
		Scan(&w.ID, &w.Name, &w.WebhookKey, &w.ContactEmail, &w.ContactPhone, &w.WebsiteURL, &w.IsActive, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("website by key: %w", err)
	}
	return &w, nil
}

// GetWebsiteName returns a storefront's display name, or nil when unknown.
func (r *Repository) GetWebsiteName(ctx context.Context, id int64) (*string, error) {
	var name string
	if err := r.pool.QueryRow(ctx, `SELECT name FROM websites WHERE id = $1;`, id).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("website name: %w", err)
	}
	return &name, nil
}

// ListWebsites returns all storefronts with their order counts, newest first.
func (r *Repository) ListWebsites(ctx context.Context) ([]Website, error) {
	const q = `
SELECT w.id, w.name, w.webhook_key, w.contact_email, w.contact_phone, w.website_url,
       w.is_active, COUNT(o.id), w.created_at
FROM websites w
LEFT JOIN orders o ON w.id = o.website_id
GROUP BY w.id
ORDER BY w.created_at DESC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	defer rows.Close()

	websites := []Website{}
	for rows.Next() {
		var w Website
		if err := rows.Scan(&w.ID, &w.Name, &w.WebhookKey, &w.ContactEmail, &w.ContactPhone,
			&w.WebsiteURL, &w.IsActive, &w.TotalOrders, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan website: %w", err)
		}
		websites = append(websites, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate websites: %w", err)
	}
	return websites, nil
}

// InsertWebsite creates a storefront with a freshly generated webhook key.
func (r *Repository) InsertWebsite(ctx context.Context, website Website) (*Website, error) {
	key := newWebhookKey()
	const q = `
INSERT INTO websites (name, webhook_key, contact_email, contact_phone, website_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, webhook_key, contact_email, contact_phone, website_url, is_active, created_at;`

	var w Website
	err := r.pool.QueryRow(ctx, q, website.Name, key, website.ContactEmail, website.ContactPhone, website.WebsiteURL).
		Scan(&w.ID, &w.Name, &w.WebhookKey, &w.ContactEmail, &w.ContactPhone, &w.WebsiteURL, &w.IsActive, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert website: %w", err)
	}
	return &w, nil
}

// ToggleWebsite flips a storefront's active flag. Inactive storefronts have
// their webhook submissions rejected.
func (r *Repository) ToggleWebsite(ctx context.Context, id int64) (*Website, error) {
	const q = `
UPDATE websites SET is_active = NOT is_active
WHERE id = $1
RETURNING id, name, webhook_key, contact_email, contact_phone, website_url, is_active, created_at;`

	var w Website
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&w.ID, &w.Name, &w.WebhookKey, &w.ContactEmail, &w.ContactPhone, &w.WebsiteURL, &w.IsActive, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("toggle website %d: %w", id, err)
	}
	return &w, nil
}

func newWebhookKey() string {
	return "wh_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
