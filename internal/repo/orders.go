package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"order-manager/internal/domain"
)

// maxOrderRows caps any order listing regardless of filters.
const maxOrderRows = 500

const orderColumns = `o.id, o.website_id, o.product_id, o.form_id, o.entry_id, o.product_name,
o.customer_name, o.phone, o.alt_phone, o.email, o.county, o.location, o.pieces,
o.courier, o.status, o.amount_kes, o.rescheduled_date, o.notes, o.created_at, o.updated_at`

func scanOrder(row pgx.Row, withWebsiteName bool) (*Order, error) {
	var o Order
	dest := []any{
		&o.ID, &o.WebsiteID, &o.ProductID, &o.FormID, &o.EntryID, &o.ProductName,
		&o.CustomerName, &o.Phone, &o.AltPhone, &o.Email, &o.County, &o.Location, &o.Pieces,
		&o.Courier, &o.Status, &o.AmountKES, &o.RescheduledDate, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	}
	if withWebsiteName {
		dest = append(dest, &o.WebsiteName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &o, nil
}

// InsertOrder stores a new order row and returns it.
func (r *Repository) InsertOrder(ctx context.Context, order Order) (*Order, error) {
	q := `
INSERT INTO orders (
    website_id, product_id, form_id, entry_id, product_name,
    customer_name, phone, alt_phone, email, county, location,
    pieces, courier, status, notes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + orderColumns + `;`

	row := r.pool.QueryRow(ctx, q,
		order.WebsiteID,
		order.ProductID,
		order.FormID,
		order.EntryID,
		order.ProductName,
		order.CustomerName,
		order.Phone,
		order.AltPhone,
		order.Email,
		order.County,
		order.Location,
		order.Pieces,
		order.Courier,
		order.Status,
		order.Notes,
	)

	inserted, err := scanOrder(row, false)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return inserted, nil
}

// GetOrder retrieves a single order by id.
func (r *Repository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1;`
	order, err := scanOrder(r.pool.QueryRow(ctx, q, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}

// ListOrders returns orders matching the filter, newest first. The result
// window is capped at maxOrderRows; when paginating, a page past the end is
// clamped to the last valid page and TotalPages never drops below 1.
func (r *Repository) ListOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error) {
	where, params := buildOrderWhere(filter)
	baseQuery := `
FROM orders o
LEFT JOIN websites w ON o.website_id = w.id
` + where

	win := pageWindow{pageSize: filter.Limit, page: filter.Page, paginated: filter.Paginated}
	if filter.Paginated {
		var total int
		if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, params...).Scan(&total); err != nil {
			return nil, fmt.Errorf("count orders: %w", err)
		}
		win.total = total
	}
	win.clamp()

	q := `SELECT ` + orderColumns + `, w.name AS website_name ` + baseQuery + `
ORDER BY o.created_at DESC
LIMIT ` + fmt.Sprint(win.pageSize)
	if filter.Paginated {
		q += ` OFFSET ` + fmt.Sprint(win.offset)
	}

	rows, err := r.pool.Query(ctx, q, params...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		order, err := scanOrder(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if !filter.Paginated {
		win.total = len(orders)
	}

	return &OrderPage{
		Orders:     orders,
		Total:      win.total,
		Page:       win.page,
		PageSize:   win.pageSize,
		TotalPages: win.totalPages,
	}, nil
}

// pageWindow turns a requested page/limit plus the matching row count into a
// LIMIT/OFFSET window. The total is capped at maxOrderRows, a page past the
// end is pulled back to the last valid page and totalPages never drops
// below 1.
type pageWindow struct {
	pageSize   int
	page       int
	paginated  bool
	total      int
	totalPages int
	offset     int
}

func (w *pageWindow) clamp() {
	if w.pageSize <= 0 {
		if w.paginated {
			w.pageSize = 20
		} else {
			w.pageSize = maxOrderRows
		}
	}
	if w.pageSize > maxOrderRows {
		w.pageSize = maxOrderRows
	}

	if w.page < 1 {
		w.page = 1
	}
	w.totalPages = 1

	if w.paginated {
		if w.total > maxOrderRows {
			w.total = maxOrderRows
		}
		w.totalPages = (w.total + w.pageSize - 1) / w.pageSize
		if w.totalPages < 1 {
			w.totalPages = 1
		}
		if w.page > w.totalPages {
			w.page = w.totalPages
		}
	} else {
		w.total = 0
	}

	w.offset = (w.page - 1) * w.pageSize
	if maxOffset := maxOrderRows - w.pageSize; w.offset > maxOffset {
		w.offset = maxOffset
	}
	if w.offset < 0 {
		w.offset = 0
	}
}

func buildOrderWhere(filter OrderFilter) (string, []any) {
	clauses := []string{"1=1"}
	params := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			params = append(params, status)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(params)))
		}
		clauses = append(clauses, fmt.Sprintf("o.status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.DateFrom != nil {
		params = append(params, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("o.created_at >= $%d", len(params)))
	}
	if filter.DateTo != nil {
		params = append(params, *filter.DateTo)
		clauses = append(clauses, fmt.Sprintf("o.created_at <= $%d", len(params)))
	}
	if filter.WebsiteID != nil {
		params = append(params, *filter.WebsiteID)
		clauses = append(clauses, fmt.Sprintf("o.website_id = $%d", len(params)))
	}
	if filter.Search != "" {
		params = append(params, "%"+filter.Search+"%")
		n := len(params)
		clauses = append(clauses, fmt.Sprintf(`(
o.customer_name ILIKE $%[1]d OR
o.phone ILIKE $%[1]d OR
o.product_name ILIKE $%[1]d OR
o.county ILIKE $%[1]d OR
o.status ILIKE $%[1]d)`, n))
	}

	return "WHERE " + strings.Join(clauses, " AND "), params
}

// UpdateOrder applies a partial mutation; only the fields carried by upd are
// written. ProductID is always written with the resolved link.
func (r *Repository) UpdateOrder(ctx context.Context, id int64, upd OrderUpdate) (*Order, error) {
	sets := []string{"updated_at = NOW()"}
	params := []any{}

	add := func(column string, value any) {
		params = append(params, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(params)))
	}

	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.RescheduledDate != nil {
		add("rescheduled_date", *upd.RescheduledDate)
	}
	if upd.Notes != nil {
		add("notes", *upd.Notes)
	}
	if upd.AmountKES != nil {
		add("amount_kes", *upd.AmountKES)
	}
	if upd.Courier != nil {
		add("courier", *upd.Courier)
	}
	add("product_id", upd.ProductID)
	if upd.ProductName != nil {
		add("product_name", *upd.ProductName)
	}

	params = append(params, id)
	q := fmt.Sprintf(`UPDATE orders o SET %s WHERE o.id = $%d RETURNING %s;`,
		strings.Join(sets, ", "), len(params), orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, q, params...), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	return order, nil
}

// ReplaceOrder overwrites every mutable field of an order.
func (r *Repository) ReplaceOrder(ctx context.Context, order Order) (*Order, error) {
	q := `
UPDATE orders o SET
    website_id = $1, product_id = $2, form_id = $3, product_name = $4, entry_id = $5,
    customer_name = $6, phone = $7, alt_phone = $8, email = $9, county = $10, location = $11,
    pieces = $12, amount_kes = $13, status = $14, rescheduled_date = $15, notes = $16,
    courier = $17, updated_at = NOW()
WHERE o.id = $18
RETURNING ` + orderColumns + `;`

	row := r.pool.QueryRow(ctx, q,
		order.WebsiteID, order.ProductID, order.FormID, order.ProductName, order.EntryID,
		order.CustomerName, order.Phone, order.AltPhone, order.Email, order.County, order.Location,
		order.Pieces, order.AmountKES, order.Status, order.RescheduledDate, order.Notes,
		order.Courier, order.ID,
	)

	replaced, err := scanOrder(row, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("replace order %d: %w", order.ID, err)
	}
	return replaced, nil
}

// ListRescheduledOrders returns rescheduled orders with a set follow-up date,
// soonest first.
func (r *Repository) ListRescheduledOrders(ctx context.Context) ([]Order, error) {
	q := `SELECT ` + orderColumns + `, w.name AS website_name
FROM orders o
LEFT JOIN websites w ON o.website_id = w.id
WHERE o.status = 'rescheduled' AND o.rescheduled_date IS NOT NULL
ORDER BY o.rescheduled_date ASC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list rescheduled orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		order, err := scanOrder(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan rescheduled order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rescheduled orders: %w", err)
	}
	return orders, nil
}
