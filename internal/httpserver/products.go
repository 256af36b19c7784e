package httpserver

import (
	"net/http"
	"strings"

	"order-manager/internal/domain"
	"order-manager/internal/repo"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.deps.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type productRequest struct {
	Name        string  `json:"name"`
	SKU         *string `json:"sku"`
	Description *string `json:"description"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, s.logger, domain.Validation("name is required"))
		return
	}

	product, err := s.deps.Store.InsertProduct(r.Context(), repo.Product{
		Name:        strings.TrimSpace(req.Name),
		SKU:         req.SKU,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, s.logger, domain.Validation("name is required"))
		return
	}

	product, err := s.deps.Store.UpdateProduct(r.Context(), repo.Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		SKU:         req.SKU,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.deps.Store.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
