package httpserver

import (
	"net/http"
	"time"

	"order-manager/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, s.logger, domain.Validation("email and password are required"))
		return
	}

	id, err := s.deps.Users.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	token, err := s.deps.Tokens.IssueToken(id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": time.Now().Add(s.deps.Tokens.TTL()).UTC().Format(time.RFC3339),
		"user": map[string]string{
			"email": id.Email,
			"role":  id.Role,
		},
	})
}
