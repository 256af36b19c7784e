package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetOrderStats computes the aggregate order and expense snapshot.
func (r *Repository) GetOrderStats(ctx context.Context) (*OrderStats, error) {
	const orderQ = `
SELECT
    COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE),
    COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE - INTERVAL '7 days'),
    COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE - INTERVAL '30 days'),
    COUNT(*) FILTER (WHERE created_at >= date_trunc('month', CURRENT_DATE)),
    COUNT(*) FILTER (WHERE status = 'pending' AND created_at >= date_trunc('month', CURRENT_DATE)),
    COUNT(*) FILTER (WHERE status = 'pending'),
    COUNT(*) FILTER (WHERE status = 'approved'),
    COUNT(*) FILTER (WHERE status = 'rescheduled'),
    COUNT(*),
    COALESCE(SUM(amount_kes) FILTER (WHERE status = 'completed'), 0),
    COALESCE(SUM(amount_kes) FILTER (WHERE status = 'completed' AND created_at >= date_trunc('month', CURRENT_DATE)), 0)
FROM orders;`

	var s OrderStats
	err := r.pool.QueryRow(ctx, orderQ).Scan(
		&s.TodayCount, &s.WeekCount, &s.MonthCount,
		&s.CurrentMonthOrders, &s.CurrentMonthPending,
		&s.PendingCount, &s.ApprovedCount, &s.RescheduledCount, &s.TotalCount,
		&s.TotalRevenue, &s.CurrentMonthRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}

	const expenseQ = `
SELECT
    COALESCE(SUM(amount_kes), 0),
    COALESCE(SUM(amount_kes) FILTER (WHERE expense_date >= date_trunc('month', CURRENT_DATE)), 0)
FROM expenses;`

	if err := r.pool.QueryRow(ctx, expenseQ).Scan(&s.TotalExpenses, &s.CurrentMonthExpenses); err != nil {
		return nil, fmt.Errorf("expense stats: %w", err)
	}

	return &s, nil
}

// GetMonthlyPerformance returns per-calendar-month revenue, expenses, profit
// and order counts from the first recorded month to now, latest first.
func (r *Repository) GetMonthlyPerformance(ctx context.Context) ([]MonthlyPerformance, error) {
	const q = `
WITH date_bounds AS (
    SELECT LEAST(
        COALESCE((SELECT MIN(created_at) FROM orders), CURRENT_DATE),
        COALESCE((SELECT MIN(expense_date) FROM expenses), CURRENT_DATE)
    ) AS start_date
),
months AS (
    SELECT generate_series(
        date_trunc('month', (SELECT start_date FROM date_bounds)),
        date_trunc('month', CURRENT_DATE),
        interval '1 month'
    ) AS month_start
),
order_totals AS (
    SELECT date_trunc('month', created_at) AS month_start,
           COALESCE(SUM(amount_kes) FILTER (WHERE status = 'completed'), 0) AS revenue,
           COUNT(*) AS total_orders
    FROM orders
    GROUP BY 1
),
expense_totals AS (
    SELECT date_trunc('month', expense_date) AS month_start,
           COALESCE(SUM(amount_kes), 0) AS expenses
    FROM expenses
    GROUP BY 1
)
SELECT to_char(m.month_start, 'YYYY-MM'),
       COALESCE(o.revenue, 0),
       COALESCE(e.expenses, 0),
       COALESCE(o.revenue, 0) - COALESCE(e.expenses, 0),
       COALESCE(o.total_orders, 0)
FROM months m
LEFT JOIN order_totals o ON m.month_start = o.month_start
LEFT JOIN expense_totals e ON m.month_start = e.month_start
ORDER BY m.month_start DESC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("monthly performance: %w", err)
	}
	defer rows.Close()

	months := []MonthlyPerformance{}
	for rows.Next() {
		var m MonthlyPerformance
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Expenses, &m.Profit, &m.TotalOrders); err != nil {
			return nil, fmt.Errorf("scan monthly performance: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly performance: %w", err)
	}
	return months, nil
}

// ListStockPurchases returns stock purchases with product names, latest
// purchase first.
func (r *Repository) ListStockPurchases(ctx context.Context) ([]StockPurchase, error) {
	const q = `
SELECT sp.id, sp.product_id, p.name, sp.quantity, sp.cost_per_item_kes, sp.total_cost_kes,
       sp.supplier_name, sp.purchase_date, sp.notes, sp.created_at
FROM stock_purchases sp
JOIN products p ON sp.product_id = p.id
ORDER BY sp.purchase_date DESC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list stock purchases: %w", err)
	}
	defer rows.Close()

	purchases := []StockPurchase{}
	for rows.Next() {
		var sp StockPurchase
		if err := rows.Scan(&sp.ID, &sp.ProductID, &sp.ProductName, &sp.Quantity, &sp.CostPerItemKES,
			&sp.TotalCostKES, &sp.SupplierName, &sp.PurchaseDate, &sp.Notes, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock purchase: %w", err)
		}
		purchases = append(purchases, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock purchases: %w", err)
	}
	return purchases, nil
}

// InsertStockPurchase records inbound stock and bumps the product's
// inventory quantity in the same transaction.
func (r *Repository) InsertStockPurchase(ctx context.Context, purchase StockPurchase) (*StockPurchase, error) {
	const insertQ = `
INSERT INTO stock_purchases (product_id, quantity, cost_per_item_kes, total_cost_kes, supplier_name, purchase_date, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, product_id, quantity, cost_per_item_kes, total_cost_kes, supplier_name, purchase_date, notes, created_at;`

	const inventoryQ = `
INSERT INTO inventory (product_id, quantity)
VALUES ($1, $2)
ON CONFLICT (product_id) DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity;`

	var inserted StockPurchase
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, insertQ,
			purchase.ProductID, purchase.Quantity, purchase.CostPerItemKES, purchase.TotalCostKES,
			purchase.SupplierName, purchase.PurchaseDate, purchase.Notes)
		if err := row.Scan(&inserted.ID, &inserted.ProductID, &inserted.Quantity, &inserted.CostPerItemKES,
			&inserted.TotalCostKES, &inserted.SupplierName, &inserted.PurchaseDate, &inserted.Notes, &inserted.CreatedAt); err != nil {
			return fmt.Errorf("insert stock purchase: %w", err)
		}
		if _, err := tx.Exec(ctx, inventoryQ, purchase.ProductID, purchase.Quantity); err != nil {
			return fmt.Errorf("bump inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

// ListExpenseCategories returns expense categories by name.
func (r *Repository) ListExpenseCategories(ctx context.Context) ([]ExpenseCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM expense_categories ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	defer rows.Close()

	categories := []ExpenseCategory{}
	for rows.Next() {
		var c ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan expense category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense categories: %w", err)
	}
	return categories, nil
}

// ListExpenses returns expenses with category names, latest first.
func (r *Repository) ListExpenses(ctx context.Context) ([]Expense, error) {
	const q = `
SELECT e.id, e.category_id, ec.name, e.description, e.amount_kes, e.expense_date, e.created_at
FROM expenses e
LEFT JOIN expense_categories ec ON e.category_id = ec.id
ORDER BY e.expense_date DESC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.CategoryID, &e.CategoryName, &e.Description, &e.AmountKES, &e.ExpenseDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// InsertExpense records an operational cost.
func (r *Repository) InsertExpense(ctx context.Context, expense Expense) (*Expense, error) {
	const q = `
INSERT INTO expenses (category_id, description, amount_kes, expense_date)
VALUES ($1, $2, $3, $4)
RETURNING id, category_id, description, amount_kes, expense_date, created_at;`

	var inserted Expense
	err := r.pool.QueryRow(ctx, q, expense.CategoryID, expense.Description, expense.AmountKES, expense.ExpenseDate).
		Scan(&inserted.ID, &inserted.CategoryID, &inserted.Description, &inserted.AmountKES, &inserted.ExpenseDate, &inserted.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return &inserted, nil
}
