package httpserver

import (
	"net/http"
	"strings"

	"order-manager/internal/domain"
	"order-manager/internal/phone"
	"order-manager/internal/repo"
)

func (s *Server) handleListRiders(w http.ResponseWriter, r *http.Request) {
	riders, err := s.deps.Store.ListRiders(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, riders)
}

type riderRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (s *Server) handleCreateRider(w http.ResponseWriter, r *http.Request) {
	var req riderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, s.logger, domain.Validation("name is required"))
		return
	}
	normalized := phone.Normalize(req.Phone)
	if normalized == "" {
		writeError(w, s.logger, domain.Validation("phone is required"))
		return
	}

	rider, err := s.deps.Store.InsertRider(r.Context(), repo.Rider{
		Name:  strings.TrimSpace(req.Name),
		Phone: normalized,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rider)
}

func (s *Server) handleToggleRider(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	rider, err := s.deps.Store.ToggleRider(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rider)
}

func (s *Server) handleDeleteRider(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Store.DeleteRider(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
