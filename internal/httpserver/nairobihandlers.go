package httpserver

import (
	"net/http"

	"order-manager/internal/auth"
	"order-manager/internal/nairobi"
	"order-manager/internal/repo"
)

func isStaff(r *http.Request) bool {
	id, ok := auth.FromContext(r.Context())
	return ok && (id.Role == auth.RoleAdmin || id.Role == auth.RoleUser)
}

type createNairobiOrderRequest struct {
	CustomerFirstName string   `json:"customer_first_name"`
	CustomerFullName  *string  `json:"customer_full_name"`
	Phone             *string  `json:"phone"`
	AltPhone          *string  `json:"alt_phone"`
	Address           string   `json:"address"`
	Product           string   `json:"product"`
	AmountPayable     *float64 `json:"amount_payable"`
}

func (s *Server) handleCreateNairobiOrder(w http.ResponseWriter, r *http.Request) {
	var req createNairobiOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.deps.Nairobi.Create(r.Context(), nairobi.CreateInput{
		CustomerFirstName: req.CustomerFirstName,
		CustomerFullName:  req.CustomerFullName,
		Phone:             req.Phone,
		AltPhone:          req.AltPhone,
		Address:           req.Address,
		Product:           req.Product,
		AmountPayable:     req.AmountPayable,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListNairobiOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Nairobi.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projectNairobiOrders(r, list))
}

func (s *Server) handleGetNairobiOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	order, err := s.deps.Nairobi.Get(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, projectNairobiOrder(r, *order))
}

type assignRequest struct {
	RiderName  string `json:"rider_name"`
	RiderPhone string `json:"rider_phone"`
}

func (s *Server) handleAssignNairobiOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.deps.Nairobi.Claim(r.Context(), id, req.RiderName, req.RiderPhone)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type nairobiStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleNairobiOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req nairobiStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	order, err := s.deps.Nairobi.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// projectNairobiOrder hides customer contact details from anonymous readers.
// An unassigned order's shared listing must reveal no more than a broadcast
// does.
func projectNairobiOrder(r *http.Request, order repo.NairobiOrder) repo.NairobiOrder {
	if isStaff(r) {
		return order
	}
	order.CustomerFullName = nil
	order.Phone = nil
	order.AltPhone = nil
	order.AssignedPhone = nil
	return order
}

func projectNairobiOrders(r *http.Request, list []repo.NairobiOrder) []repo.NairobiOrder {
	if isStaff(r) {
		return list
	}
	out := make([]repo.NairobiOrder, len(list))
	for i, order := range list {
		out[i] = projectNairobiOrder(r, order)
	}
	return out
}
