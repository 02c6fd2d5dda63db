package passcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	CodeLength = 6
	codeMin    = 100000
	codeSpan   = 900000
)

// Generator produces six-digit codes in [100000, 999999] from a
// cryptographically secure source.
type Generator struct {
	reader io.Reader
}

func NewGenerator() *Generator {
	return &Generator{reader: rand.Reader}
}

// NewGeneratorWithReader is used by tests to control the entropy source.
func NewGeneratorWithReader(r io.Reader) *Generator {
	return &Generator{reader: r}
}

func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(g.reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCodeGeneration, err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
