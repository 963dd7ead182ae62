package srp

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is required for RFC 5054 interoperability
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"math/big"
	"strings"
)

// Hash is the digest capability used by an Engine. It hashes the
// concatenation of all parts and returns a digest of fixed length.
type Hash func(parts ...[]byte) []byte

// Named hash algorithms.
const (
	HashSHA1   = "sha-1"
	HashSHA256 = "sha-256"
	HashSHA512 = "sha-512"
)

// HashFunc adapts a hash.Hash constructor into a Hash.
func HashFunc(newHash func() hash.Hash) Hash {
	return func(parts ...[]byte) []byte {
		h := newHash()
		for _, p := range parts {
			h.Write(p)
		}
		return h.Sum(nil)
	}
}

// CanonicalHashName maps a spelling of a standard SHA variant, such as
// "SHA256" or "sha-256", to its Hash* constant.
func CanonicalHashName(name string) (string, bool) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "sha1":
		return HashSHA1, true
	case "sha256":
		return HashSHA256, true
	case "sha512":
		return HashSHA512, true
	default:
		return "", false
	}
}

// LookupHash resolves one of the standard SHA variants by name.
// Both "sha-256" and "sha256" spellings are accepted.
func LookupHash(name string) (Hash, error) {
	canonical, _ := CanonicalHashName(name)
	switch canonical {
	case HashSHA1:
		return HashFunc(sha1.New), nil
	case HashSHA256:
		return HashFunc(sha256.New), nil
	case HashSHA512:
		return HashFunc(sha512.New), nil
	default:
		return nil, fmt.Errorf("%w: unknown hash %q", ErrInvalidParameter, name)
	}
}

// hashInput is one piece of a hashed message. Text is UTF-8 encoded, raw
// bytes are used as-is and integers are serialized minimal big-endian.
type hashInput interface {
	encode() []byte
}

type textInput string

func (t textInput) encode() []byte { return []byte(t) }

type bytesInput []byte

func (b bytesInput) encode() []byte { return b }

type intInput struct{ v *big.Int }

func (i intInput) encode() []byte { return i.v.Bytes() }

func text(s string) hashInput      { return textInput(s) }
func raw(b []byte) hashInput       { return bytesInput(b) }
func integer(v *big.Int) hashInput { return intInput{v: v} }
