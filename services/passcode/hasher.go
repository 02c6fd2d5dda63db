package passcode

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher stores codes as bcrypt hashes. Plaintext codes are never persisted.
type Hasher struct {
	cost int
}

// NewHasher clamps cost into bcrypt's accepted range; zero or less means the
// library default.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Cost() int {
	return h.cost
}

func (h *Hasher) Hash(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	return string(b), nil
}

// Verify reports whether code matches hash. A malformed hash never matches.
func (h *Hasher) Verify(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
