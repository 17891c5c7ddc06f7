// Package credential hashes and verifies passwords. It is the only place in
// the service that touches password material in clear form.
package credential

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const defaultCost = 12

type Store struct {
	cost int
}

func NewStore() *Store {
	return &Store{cost: defaultCost}
}

// NewStoreWithCost exists for tests; production callers use NewStore.
func NewStoreWithCost(cost int) *Store {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}
	return &Store{cost: cost}
}

func (s *Store) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash. An absent or
// malformed stored value verifies false rather than surfacing an error.
func (s *Store) Verify(password string, passwordHash string) bool {
	if strings.TrimSpace(passwordHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
}
