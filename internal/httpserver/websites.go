package httpserver

import (
	"net/http"
	"strings"

	"order-manager/internal/domain"
	"order-manager/internal/repo"
)

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request) {
	websites, err := s.deps.Store.ListWebsites(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, websites)
}

type createWebsiteRequest struct {
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email"`
	ContactPhone *string `json:"contact_phone"`
	WebsiteURL   *string `json:"website_url"`
}

func (s *Server) handleCreateWebsite(w http.ResponseWriter, r *http.Request) {
	var req createWebsiteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, s.logger, domain.Validation("name is required"))
		return
	}

	website, err := s.deps.Store.InsertWebsite(r.Context(), repo.Website{
		Name:         strings.TrimSpace(req.Name),
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		WebsiteURL:   req.WebsiteURL,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, website)
}

func (s *Server) handleToggleWebsite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	website, err := s.deps.Store.ToggleWebsite(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, website)
}
