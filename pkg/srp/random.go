package srp

//go:generate go tool mockgen -destination=mock_random.go -package=srp github.com/fzdarsky/srp6a/pkg/srp RandomSource

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// RandomSource supplies cryptographically secure random bytes.
// crypto/rand.Reader satisfies it.
type RandomSource interface {
	Read(p []byte) (n int, err error)
}

// randomBytes draws exactly n bytes from r.
func randomBytes(r RandomSource, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return buf, nil
}

// wipeInt overwrites the words backing x and sets it to zero.
func wipeInt(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	x.SetInt64(0)
}

// wipeBytes overwrites b with zeros.
func wipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
