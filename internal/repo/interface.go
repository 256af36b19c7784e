package repo

import (
	"context"
)

// Store defines the interface for data persistence. *Repository is the
// Postgres implementation; tests substitute fakes.
type Store interface {
	// Lifecycle
	Close()
	Ping(ctx context.Context) error

	// Orders
	InsertOrder(ctx context.Context, order Order) (*Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error)
	UpdateOrder(ctx context.Context, id int64, upd OrderUpdate) (*Order, error)
	ReplaceOrder(ctx context.Context, order Order) (*Order, error)
	ListRescheduledOrders(ctx context.Context) ([]Order, error)

	// Products
	ProductIDBySKU(ctx context.Context, sku string) (*int64, error)
	ProductIDByName(ctx context.Context, name string) (*int64, error)
	ProductName(ctx context.Context, id int64) (*string, error)
	ListProducts(ctx context.Context) ([]Product, error)
	InsertProduct(ctx context.Context, product Product) (*Product, error)
	UpdateProduct(ctx context.Context, product Product) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	// Websites
	GetActiveWebsiteByKey(ctx context.Context, webhookKey string) (*Website, error)
	GetWebsiteName(ctx context.Context, id int64) (*string, error)
	ListWebsites(ctx context.Context) ([]Website, error)
	InsertWebsite(ctx context.Context, website Website) (*Website, error)
	ToggleWebsite(ctx context.Context, id int64) (*Website, error)

	// Nairobi same-day orders
	InsertNairobiOrder(ctx context.Context, order NairobiOrder) (*NairobiOrder, error)
	GetNairobiOrder(ctx context.Context, id int64) (*NairobiOrder, error)
	ListNairobiOrders(ctx context.Context, status string) ([]NairobiOrder, error)
	ClaimNairobiOrder(ctx context.Context, id int64, riderName, riderPhone string) (*NairobiOrder, error)
	SetNairobiOrderDelivered(ctx context.Context, id int64) (*NairobiOrder, error)
	ResetNairobiOrder(ctx context.Context, id int64) (*NairobiOrder, error)

	// Riders
	ListRiders(ctx context.Context) ([]Rider, error)
	ListActiveRiderPhones(ctx context.Context) ([]string, error)
	InsertRider(ctx context.Context, rider Rider) (*Rider, error)
	ToggleRider(ctx context.Context, id int64) (*Rider, error)
	DeleteRider(ctx context.Context, id int64) error

	// Finance
	GetOrderStats(ctx context.Context) (*OrderStats, error)
	GetMonthlyPerformance(ctx context.Context) ([]MonthlyPerformance, error)
	ListStockPurchases(ctx context.Context) ([]StockPurchase, error)
	InsertStockPurchase(ctx context.Context, purchase StockPurchase) (*StockPurchase, error)
	ListExpenseCategories(ctx context.Context) ([]ExpenseCategory, error)
	ListExpenses(ctx context.Context) ([]Expense, error)
	InsertExpense(ctx context.Context, expense Expense) (*Expense, error)
}

var _ Store = (*Repository)(nil)
