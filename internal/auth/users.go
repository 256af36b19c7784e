package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid email or password")

// Directory holds the fixed operator set. Identities come from configuration
// as email:role:bcrypt-hash triples; there is no self-registration.
type Directory struct {
	users map[string]userEntry
}

type userEntry struct {
	role string
	hash []byte
}

// ParseDirectory builds a Directory from configured triples.
func ParseDirectory(entries []string) (*Directory, error) {
	users := make(map[string]userEntry, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		// bcrypt hashes contain no ':', so a 3-way split is unambiguous.
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed user entry %q, want email:role:hash", entry)
		}
		email := strings.ToLower(strings.TrimSpace(parts[0]))
		role := strings.TrimSpace(parts[1])
		if role != RoleAdmin && role != RoleUser {
			return nil, fmt.Errorf("unknown role %q for user %s", role, email)
		}
		users[email] = userEntry{role: role, hash: []byte(parts[2])}
	}
	return &Directory{users: users}, nil
}

// Authenticate verifies a password against the stored hash. The error does
// not distinguish a missing user from a wrong password.
func (d *Directory) Authenticate(email, password string) (Identity, error) {
	entry, ok := d.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Identity{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(entry.hash, []byte(password)); err != nil {
		return Identity{}, ErrBadCredentials
	}
	return Identity{Email: strings.ToLower(strings.TrimSpace(email)), Role: entry.role}, nil
}

// Len reports how many identities are configured.
func (d *Directory) Len() int {
	return len(d.users)
}
