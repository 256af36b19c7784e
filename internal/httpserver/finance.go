package httpserver

import (
	"net/http"
	"strings"
	"time"

	"order-manager/internal/catalog"
	"order-manager/internal/domain"
	"order-manager/internal/repo"
)

func (s *Server) handleOrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Store.GetOrderStats(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMonthlyPerformance(w http.ResponseWriter, r *http.Request) {
	series, err := s.deps.Store.GetMonthlyPerformance(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleListStockPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := s.deps.Store.ListStockPurchases(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

type stockPurchaseRequest struct {
	ProductID      *int64   `json:"product_id"`
	SKU            string   `json:"sku"`
	ProductName    string   `json:"product_name"`
	Quantity       int      `json:"quantity"`
	CostPerItemKES float64  `json:"cost_per_item_kes"`
	SupplierName   *string  `json:"supplier_name"`
	PurchaseDate   *string  `json:"purchase_date"`
	Notes          *string  `json:"notes"`
}

func (s *Server) handleCreateStockPurchase(w http.ResponseWriter, r *http.Request) {
	var req stockPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	productID, err := s.deps.Resolver.Resolve(r.Context(), catalog.Identifiers{
		ProductID:   req.ProductID,
		SKU:         req.SKU,
		ProductName: req.ProductName,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if productID == nil {
		writeError(w, s.logger, domain.Validation("SKU/product link is required to record a purchase"))
		return
	}
	if req.Quantity < 1 {
		writeError(w, s.logger, domain.Validation("quantity must be at least 1"))
		return
	}
	if req.CostPerItemKES < 0 {
		writeError(w, s.logger, domain.Validation("cost_per_item_kes must not be negative"))
		return
	}

	purchaseDate := time.Now()
	if req.PurchaseDate != nil && *req.PurchaseDate != "" {
		parsed, err := parseDate(*req.PurchaseDate)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		purchaseDate = *parsed
	}

	purchase, err := s.deps.Store.InsertStockPurchase(r.Context(), repo.StockPurchase{
		ProductID:      *productID,
		Quantity:       req.Quantity,
		CostPerItemKES: req.CostPerItemKES,
		TotalCostKES:   float64(req.Quantity) * req.CostPerItemKES,
		SupplierName:   req.SupplierName,
		PurchaseDate:   purchaseDate,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

func (s *Server) handleListExpenseCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.deps.Store.ListExpenseCategories(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.deps.Store.ListExpenses(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

type expenseRequest struct {
	CategoryID  *int64  `json:"category_id"`
	Description string  `json:"description"`
	AmountKES   float64 `json:"amount_kes"`
	ExpenseDate *string `json:"expense_date"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, s.logger, domain.Validation("description is required"))
		return
	}
	if req.AmountKES <= 0 {
		writeError(w, s.logger, domain.Validation("amount_kes must be positive"))
		return
	}

	expenseDate := time.Now()
	if req.ExpenseDate != nil && *req.ExpenseDate != "" {
		parsed, err := parseDate(*req.ExpenseDate)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		expenseDate = *parsed
	}

	expense, err := s.deps.Store.InsertExpense(r.Context(), repo.Expense{
		CategoryID:  req.CategoryID,
		Description: strings.TrimSpace(req.Description),
		AmountKES:   req.AmountKES,
		ExpenseDate: expenseDate,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}
