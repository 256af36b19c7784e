package repo

import "time"

// Order represents a row in the orders table. WebsiteName is joined from
// websites on list reads.
type Order struct {
	ID              int64      `json:"id"`
	WebsiteID       int64      `json:"website_id"`
	ProductID       *int64     `json:"product_id"`
	FormID          *string    `json:"form_id,omitempty"`
	EntryID         *string    `json:"entry_id,omitempty"`
	ProductName     *string    `json:"product_name"`
	CustomerName    *string    `json:"customer_name"`
	Phone           *string    `json:"phone"`
	AltPhone        *string    `json:"alt_phone,omitempty"`
	Email           *string    `json:"email,omitempty"`
	County          *string    `json:"county"`
	Location        *string    `json:"location"`
	Pieces          int        `json:"pieces"`
	Courier         *string    `json:"courier"`
	Status          string     `json:"status"`
	AmountKES       *float64   `json:"amount_kes"`
	RescheduledDate *time.Time `json:"rescheduled_date"`
	Notes           *string    `json:"notes"`
	WebsiteName     *string    `json:"website_name,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OrderFilter narrows the order listing. Statuses may hold several values
// (comma-separated in the query string). Search matches a case-insensitive
// substring across customer name, phone, product name, county and status.
type OrderFilter struct {
	Statuses  []string
	DateFrom  *time.Time
	DateTo    *time.Time
	WebsiteID *int64
	Search    string
	Page      int
	Limit     int
	Paginated bool
}

// OrderPage is a paginated order listing. Total is capped at the result
// window; TotalPages is always at least 1.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// OrderUpdate carries a partial order mutation. Nil fields are left
// untouched, except ProductID which is always written with the resolved
// link (possibly clearing it) and ProductName which is written only when a
// canonical name was resolved.
type OrderUpdate struct {
	Status          *string
	RescheduledDate *time.Time
	Notes           *string
	AmountKES       *float64
	Courier         *string
	ProductID       *int64
	ProductName     *string
}

// Website represents a storefront tenant. TotalOrders is joined on list
// reads.
type Website struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	WebhookKey   string    `json:"webhook_key"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	WebsiteURL   *string   `json:"website_url,omitempty"`
	IsActive     bool      `json:"is_active"`
	TotalOrders  int64     `json:"total_orders"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product is a catalog entry. Quantity is joined from inventory on list
// reads.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SKU         *string   `json:"sku"`
	Description *string   `json:"description"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// NairobiOrder is a same-day delivery request, decoupled from inventory.
type NairobiOrder struct {
	ID                int64      `json:"id"`
	CustomerFirstName string     `json:"customer_first_name"`
	CustomerFullName  *string    `json:"customer_full_name,omitempty"`
	Phone             *string    `json:"phone,omitempty"`
	AltPhone          *string    `json:"alt_phone,omitempty"`
	Address           string     `json:"address"`
	Product           string     `json:"product"`
	AmountPayable     *float64   `json:"amount_payable"`
	Status            string     `json:"status"`
	AssignedTo        *string    `json:"assigned_to,omitempty"`
	AssignedPhone     *string    `json:"assigned_phone,omitempty"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Rider is a phone-addressable notification recipient.
type Rider struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// StockPurchase records inbound stock for a product.
type StockPurchase struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	ProductName    *string   `json:"product_name,omitempty"`
	Quantity       int       `json:"quantity"`
	CostPerItemKES float64   `json:"cost_per_item_kes"`
	TotalCostKES   float64   `json:"total_cost_kes"`
	SupplierName   *string   `json:"supplier_name,omitempty"`
	PurchaseDate   time.Time `json:"purchase_date"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Expense is an operational cost entry.
type Expense struct {
	ID           int64     `json:"id"`
	CategoryID   *int64    `json:"category_id"`
	CategoryName *string   `json:"category_name,omitempty"`
	Description  string    `json:"description"`
	AmountKES    float64   `json:"amount_kes"`
	ExpenseDate  time.Time `json:"expense_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExpenseCategory groups expenses.
type ExpenseCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OrderStats is the aggregate snapshot served by the stats endpoint.
type OrderStats struct {
	TodayCount           int64   `json:"today_count"`
	WeekCount            int64   `json:"week_count"`
	MonthCount           int64   `json:"month_count"`
	PendingCount         int64   `json:"pending_count"`
	ApprovedCount        int64   `json:"approved_count"`
	RescheduledCount     int64   `json:"rescheduled_count"`
	TotalCount           int64   `json:"total_count"`
	TotalRevenue         float64 `json:"total_revenue"`
	CurrentMonthOrders   int64   `json:"current_month_orders"`
	CurrentMonthPending  int64   `json:"current_month_pending_orders"`
	CurrentMonthRevenue  float64 `json:"current_month_revenue"`
	TotalExpenses        float64 `json:"total_expenses"`
	CurrentMonthExpenses float64 `json:"current_month_expenses"`
}

// MonthlyPerformance is one month in the performance series.
type MonthlyPerformance struct {
	Month       string  `json:"month"`
	Revenue     float64 `json:"revenue"`
	Expenses    float64 `json:"expenses"`
	Profit      float64 `json:"profit"`
	TotalOrders int64   `json:"total_orders"`
}
