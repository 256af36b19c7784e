package httpserver

import (
	"errors"
	"net/http"

	"order-manager/internal/domain"
	"order-manager/internal/orders"
)

// webhookPayload mirrors the storefront form plugins' field names.
type webhookPayload struct {
	FormID   *string `json:"form_id"`
	EntryID  *string `json:"entry_id"`
	SKU      string  `json:"sku"`
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	AltPhone *string `json:"alt_phone"`
	Email    *string `json:"email"`
	County   *string `json:"county"`
	Location *string `json:"location"`
	Pieces   int     `json:"pieces"`
	Courier  *string `json:"courier"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("webhook_key")

	website, err := s.deps.Store.GetActiveWebsiteByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid webhook key"})
			return
		}
		writeError(w, s.logger, err)
		return
	}

	var payload webhookPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.deps.Orders.Create(r.Context(), orders.CreateInput{
		WebsiteID:    website.ID,
		SKU:          payload.SKU,
		ProductName:  payload.Product,
		FormID:       payload.FormID,
		EntryID:      payload.EntryID,
		CustomerName: payload.Name,
		Phone:        payload.Phone,
		AltPhone:     payload.AltPhone,
		Email:        payload.Email,
		County:       payload.County,
		Location:     payload.Location,
		Pieces:       payload.Pieces,
		Courier:      payload.Courier,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if s.metrics != nil {
		s.metrics.OrdersReceived.WithLabelValues(website.Name).Inc()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"order_id": order.ID,
		"message":  "Order received successfully",
	})
}
