package auth

import (
	"context"
	"net/http"
	"strings"
)

type identityKey struct{}

// FromContext returns the authenticated identity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Middleware guards HTTP handlers with bearer-token checks.
type Middleware struct {
	tokens *TokenStrategy
}

func NewMiddleware(tokens *TokenStrategy) *Middleware {
	return &Middleware{tokens: tokens}
}

// Require rejects requests without a valid token carrying one of the given
// roles. A valid token with the wrong role gets 403, everything else 401.
func (m *Middleware) Require(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.identify(r)
		if !ok {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		if !roleAllowed(id.Role, roles) {
			http.Error(w, `{"error":"insufficient permissions"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// Optional attaches the identity when a valid token carrying one of the given
// roles is present and lets the request through either way. An invalid token
// or a role outside the allowlist degrades to anonymous rather than failing,
// so shared rider links keep working.
func (m *Middleware) Optional(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := m.identify(r); ok && roleAllowed(id.Role, roles) {
			r = r.WithContext(context.WithValue(r.Context(), identityKey{}, id))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) identify(r *http.Request) (Identity, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return Identity{}, false
	}
	id, err := m.tokens.ParseToken(strings.TrimSpace(token))
	if err != nil {
		return Identity{}, false
	}
	return id, true
}

func roleAllowed(role string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
