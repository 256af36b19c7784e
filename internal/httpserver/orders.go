package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"order-manager/internal/domain"
	"order-manager/internal/orders"
	"order-manager/internal/repo"
)

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.Validation("invalid id")
	}
	return id, nil
}

// parseDate accepts a date-only or RFC 3339 timestamp query value.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Validation("invalid date " + strconv.Quote(raw))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repo.OrderFilter{
		Search:    q.Get("search"),
		Paginated: q.Get("paginated") == "true",
	}

	if raw := q.Get("status"); raw != "" {
		for _, st := range strings.Split(raw, ",") {
			if st = strings.TrimSpace(st); st != "" {
				filter.Statuses = append(filter.Statuses, st)
			}
		}
	}

	from, err := parseDate(q.Get("date_from"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	filter.DateFrom = from

	to, err := parseDate(q.Get("date_to"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	filter.DateTo = to

	if raw := q.Get("website_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, s.logger, domain.Validation("invalid website_id"))
			return
		}
		filter.WebsiteID = &id
	}

	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	page, err := s.deps.Store.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type createOrderRequest struct {
	WebsiteID    int64    `json:"website_id"`
	ProductID    *int64   `json:"product_id"`
	SKU          string   `json:"sku"`
	ProductName  string   `json:"product_name"`
	CustomerName string   `json:"customer_name"`
	Phone        string   `json:"phone"`
	AltPhone     *string  `json:"alt_phone"`
	Email        *string  `json:"email"`
	County       *string  `json:"county"`
	Location     *string  `json:"location"`
	Pieces       int      `json:"pieces"`
	Courier      *string  `json:"courier"`
	Status       string   `json:"status"`
	Notes        *string  `json:"notes"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.deps.Orders.Create(r.Context(), orders.CreateInput{
		WebsiteID:    req.WebsiteID,
		ProductID:    req.ProductID,
		SKU:          req.SKU,
		ProductName:  req.ProductName,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		AltPhone:     req.AltPhone,
		Email:        req.Email,
		County:       req.County,
		Location:     req.Location,
		Pieces:       req.Pieces,
		Courier:      req.Courier,
		Status:       req.Status,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if s.metrics != nil {
		s.metrics.OrdersReceived.WithLabelValues("manual").Inc()
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	order, err := s.deps.Store.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type updateOrderRequest struct {
	Status          *string    `json:"status"`
	RescheduledDate *time.Time `json:"rescheduled_date"`
	Notes           *string    `json:"notes"`
	AmountKES       *float64   `json:"amount_kes"`
	Courier         *string    `json:"courier"`
	ProductID       *int64     `json:"product_id"`
	SKU             string     `json:"sku"`
	ProductName     *string    `json:"product_name"`
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req updateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.deps.Orders.Update(r.Context(), id, orders.UpdateInput{
		Status:          req.Status,
		RescheduledDate: req.RescheduledDate,
		Notes:           req.Notes,
		AmountKES:       req.AmountKES,
		Courier:         req.Courier,
		ProductID:       req.ProductID,
		SKU:             req.SKU,
		ProductName:     req.ProductName,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type replaceOrderRequest struct {
	WebsiteID       int64      `json:"website_id"`
	ProductID       *int64     `json:"product_id"`
	SKU             string     `json:"sku"`
	ProductName     string     `json:"product_name"`
	FormID          *string    `json:"form_id"`
	EntryID         *string    `json:"entry_id"`
	CustomerName    string     `json:"customer_name"`
	Phone           string     `json:"phone"`
	AltPhone        *string    `json:"alt_phone"`
	Email           *string    `json:"email"`
	County          *string    `json:"county"`
	Location        *string    `json:"location"`
	Pieces          int        `json:"pieces"`
	AmountKES       *float64   `json:"amount_kes"`
	Status          string     `json:"status"`
	RescheduledDate *time.Time `json:"rescheduled_date"`
	Notes           *string    `json:"notes"`
	Courier         *string    `json:"courier"`
}

func (s *Server) handleReplaceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req replaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.deps.Orders.Replace(r.Context(), id, orders.ReplaceInput{
		WebsiteID:       req.WebsiteID,
		ProductID:       req.ProductID,
		SKU:             req.SKU,
		ProductName:     req.ProductName,
		FormID:          req.FormID,
		EntryID:         req.EntryID,
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		AltPhone:        req.AltPhone,
		Email:           req.Email,
		County:          req.County,
		Location:        req.Location,
		Pieces:          req.Pieces,
		AmountKES:       req.AmountKES,
		Status:          req.Status,
		RescheduledDate: req.RescheduledDate,
		Notes:           req.Notes,
		Courier:         req.Courier,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleRescheduledOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Store.ListRescheduledOrders(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
