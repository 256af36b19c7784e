package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Identity is an authenticated operator.
type Identity struct {
	Email string
	Role  string
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TokenStrategy creates and verifies expiring bearer tokens signed with
// HMAC-SHA256. Tokens are stateless; revocation happens by rotating the
// secret.
type TokenStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenStrategy builds a TokenStrategy with the provided secret and TTL.
func NewTokenStrategy(secret string, ttl time.Duration) *TokenStrategy {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenStrategy{secret: []byte(secret), ttl: ttl}
}

// IssueToken generates a signed token for the identity.
func (s *TokenStrategy) IssueToken(id Identity) (string, error) {
	if strings.Contains(id.Email, ":") || strings.Contains(id.Role, ":") {
		return "", fmt.Errorf("identity fields must not contain ':'")
	}
	expires := time.Now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%s:%s:%d", id.Email, id.Role, expires)
	token := fmt.Sprintf("%s:%s", payload, s.sign(payload))
	return base64.StdEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates a token and returns the encoded identity.
func (s *TokenStrategy) ParseToken(token string) (Identity, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 4 {
		return Identity{}, ErrInvalidToken
	}

	payload := strings.Join(parts[:3], ":")
	expectedSig := s.sign(payload)
	if !hmac.Equal([]byte(expectedSig), []byte(parts[3])) {
		return Identity{}, ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if time.Unix(expires, 0).Before(time.Now()) {
		return Identity{}, ErrInvalidToken
	}

	return Identity{Email: parts[0], Role: parts[1]}, nil
}

// TTL reports how long issued tokens stay valid.
func (s *TokenStrategy) TTL() time.Duration {
	return s.ttl
}

func (s *TokenStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
