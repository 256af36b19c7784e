package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenStrategy("secret", time.Hour)

	token, err := s.IssueToken(Identity{Email: "ops@example.com", Role: RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if id.Email != "ops@example.com" || id.Role != RoleAdmin {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	s := NewTokenStrategy("secret", time.Hour)
	other := NewTokenStrategy("other-secret", time.Hour)

	token, err := s.IssueToken(Identity{Email: "ops@example.com", Role: RoleUser})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("foreign-secret token must be invalid, got %v", err)
	}
	if _, err := s.ParseToken("bm90IGEgdG9rZW4="); err != ErrInvalidToken {
		t.Fatalf("garbage token must be invalid, got %v", err)
	}
	if _, err := s.ParseToken(token[:len(token)-4]); err != ErrInvalidToken {
		t.Fatalf("truncated token must be invalid, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	s := &TokenStrategy{secret: []byte("secret"), ttl: -time.Hour}
	token, err := s.IssueToken(Identity{Email: "ops@example.com", Role: RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ParseToken(token); err != ErrInvalidToken {
		t.Fatalf("expired token must be invalid, got %v", err)
	}
}

func testDirectory(t *testing.T) *Directory {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	dir, err := ParseDirectory([]string{"ops@example.com:admin:" + string(hash)})
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestDirectoryAuthenticate(t *testing.T) {
	dir := testDirectory(t)

	id, err := dir.Authenticate("Ops@Example.com", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if id.Role != RoleAdmin {
		t.Fatalf("unexpected role %q", id.Role)
	}

	if _, err := dir.Authenticate("ops@example.com", "wrong"); err != ErrBadCredentials {
		t.Fatalf("wrong password must fail, got %v", err)
	}
	if _, err := dir.Authenticate("nobody@example.com", "hunter2"); err != ErrBadCredentials {
		t.Fatalf("unknown user must fail, got %v", err)
	}
}

func TestParseDirectoryRejectsMalformedEntries(t *testing.T) {
	if _, err := ParseDirectory([]string{"no-colons-here"}); err == nil {
		t.Fatal("expected error for malformed entry")
	}
	if _, err := ParseDirectory([]string{"x@y.com:superuser:hash"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func echoIdentity(w http.ResponseWriter, r *http.Request) {
	if id, ok := FromContext(r.Context()); ok {
		w.Write([]byte(id.Role))
		return
	}
	w.Write([]byte("anonymous"))
}

func TestMiddlewareRequire(t *testing.T) {
	tokens := NewTokenStrategy("secret", time.Hour)
	mw := NewMiddleware(tokens)
	handler := mw.Require(http.HandlerFunc(echoIdentity), RoleAdmin)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: want 401, got %d", rec.Code)
	}

	userToken, _ := tokens.IssueToken(Identity{Email: "u@example.com", Role: RoleUser})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong role: want 403, got %d", rec.Code)
	}

	adminToken, _ := tokens.IssueToken(Identity{Email: "a@example.com", Role: RoleAdmin})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != RoleAdmin {
		t.Fatalf("admin: want 200/admin, got %d/%s", rec.Code, rec.Body.String())
	}
}

func TestMiddlewareOptionalDegradesToAnonymous(t *testing.T) {
	tokens := NewTokenStrategy("secret", time.Hour)
	mw := NewMiddleware(tokens)
	handler := mw.Optional(http.HandlerFunc(echoIdentity))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("invalid token must degrade to anonymous, got %d/%s", rec.Code, rec.Body.String())
	}

	token, _ := tokens.IssueToken(Identity{Email: "u@example.com", Role: RoleUser})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Body.String() != RoleUser {
		t.Fatalf("valid token must attach identity, got %s", rec.Body.String())
	}
}

func TestMiddlewareOptionalRoleAllowlist(t *testing.T) {
	tokens := NewTokenStrategy("secret", time.Hour)
	mw := NewMiddleware(tokens)
	handler := mw.Optional(http.HandlerFunc(echoIdentity), RoleAdmin)

	userToken, _ := tokens.IssueToken(Identity{Email: "u@example.com", Role: RoleUser})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("non-allowlisted role must degrade to anonymous, got %d/%s", rec.Code, rec.Body.String())
	}

	adminToken, _ := tokens.IssueToken(Identity{Email: "a@example.com", Role: RoleAdmin})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Body.String() != RoleAdmin {
		t.Fatalf("allowlisted role must attach identity, got %s", rec.Body.String())
	}
}
