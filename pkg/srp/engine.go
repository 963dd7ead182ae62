package srp

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// minModulusBits is the smallest modulus accepted for a custom group.
const minModulusBits = 512

// Engine computes every SRP-6a quantity for one group and hash.
//
// The multiplier k = H(N, PAD(g)) is derived once at construction. An Engine
// never mutates after construction, so it is safe to share between
// goroutines and sessions.
type Engine struct {
	n      *big.Int
	g      *big.Int
	k      *big.Int
	nBits  int
	nBytes int
	hash   Hash
}

// NewEngine creates an Engine for a caller-supplied group given as big-endian
// hex strings. The modulus must be an odd probable prime of at least 512 bits
// and the generator must satisfy 1 < g < N-1. Whether N is a safe prime and g
// generates a large subgroup is the caller's responsibility.
func NewEngine(nHex, gHex string, h Hash) (*Engine, error) {
	return newEngine(nHex, gHex, h, true)
}

// NewGroupEngine creates an Engine for a predefined group.
func NewGroupEngine(group Group, h Hash) (*Engine, error) {
	if known, ok := namedGroups[group.Name]; ok && known == group {
		// Table groups are known primes.
		return newEngine(group.N, group.G, h, false)
	}
	return newEngine(group.N, group.G, h, true)
}

func newEngine(nHex, gHex string, h Hash, checkPrime bool) (*Engine, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: hash is required", ErrInvalidParameter)
	}

	n, err := parseHex(nHex)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	g, err := parseHex(gHex)
	if err != nil {
		return nil, fmt.Errorf("invalid generator: %w", err)
	}

	if n.BitLen() < minModulusBits {
		return nil, fmt.Errorf("%w: modulus must be at least %d bits, got %d", ErrInvalidParameter, minModulusBits, n.BitLen())
	}
	if n.Bit(0) != 1 {
		return nil, fmt.Errorf("%w: modulus must be odd", ErrInvalidParameter)
	}
	nMinusOne := new(big.Int).Sub(n, big.NewInt(1))
	if g.Cmp(big.NewInt(1)) <= 0 || g.Cmp(nMinusOne) >= 0 {
		return nil, fmt.Errorf("%w: generator must satisfy 1 < g < N-1", ErrInvalidParameter)
	}
	if checkPrime && !n.ProbablyPrime(0) {
		return nil, fmt.Errorf("%w: modulus is not prime", ErrInvalidParameter)
	}

	e := &Engine{
		n:      n,
		g:      g,
		nBits:  n.BitLen(),
		nBytes: (n.BitLen() + 7) / 8,
		hash:   h,
	}

	// k = H(N | PAD(g))
	e.k = e.digest(integer(n), raw(padLeft(g.Bytes(), e.nBytes)))

	return e, nil
}

// N returns a copy of the group modulus.
func (e *Engine) N() *big.Int { return new(big.Int).Set(e.n) }

// G returns a copy of the group generator.
func (e *Engine) G() *big.Int { return new(big.Int).Set(e.g) }

// K returns a copy of the multiplier k.
func (e *Engine) K() *big.Int { return new(big.Int).Set(e.k) }

// NBits returns the bit length of N.
func (e *Engine) NBits() int { return e.nBits }

// NBytes returns the byte length of N.
func (e *Engine) NBytes() int { return e.nBytes }

// ComputeX computes the private key x = H(s | H(I | ":" | p)).
func (e *Engine) ComputeX(username, password string, salt []byte) *big.Int {
	inner := e.digest(text(username), text(":"), text(password))
	return e.digest(raw(salt), integer(inner))
}

// ComputeV computes the verifier v = g^x mod N.
func (e *Engine) ComputeV(x *big.Int) *big.Int {
	return new(big.Int).Exp(e.g, x, e.n)
}

// ComputeA computes the client public key A = g^a mod N.
func (e *Engine) ComputeA(a *big.Int) *big.Int {
	return new(big.Int).Exp(e.g, a, e.n)
}

// ComputeB computes the server public key B = (k*v + g^b) mod N.
func (e *Engine) ComputeB(b, v *big.Int) *big.Int {
	kv := new(big.Int).Mul(e.k, v)
	kv.Mod(kv, e.n)

	gb := new(big.Int).Exp(e.g, b, e.n)

	B := kv.Add(kv, gb)
	return B.Mod(B, e.n)
}

// ComputeU computes the scrambling parameter u = H(A | B) mod N.
//
//nolint:gocritic // A, B are capitalized per RFC 5054 notation
func (e *Engine) ComputeU(A, B *big.Int) *big.Int {
	u := e.digest(integer(A), integer(B))
	return u.Mod(u, e.n)
}

// ComputeClientS computes the client shared secret
// S = (B - k*g^x) ^ (a + u*x) mod N.
//
// N is added to B before subtracting k*g^x mod N so the base never goes
// negative.
//
//nolint:gocritic // B is capitalized per RFC 5054 notation
func (e *Engine) ComputeClientS(a, B, x, u *big.Int) *big.Int {
	// k*g^x mod N
	kgx := new(big.Int).Exp(e.g, x, e.n)
	kgx.Mul(kgx, e.k)
	kgx.Mod(kgx, e.n)

	// (B + N - k*g^x mod N) mod N
	base := new(big.Int).Add(B, e.n)
	base.Sub(base, kgx)
	base.Mod(base, e.n)

	// a + u*x
	exp := new(big.Int).Mul(u, x)
	exp.Add(exp, a)

	S := base.Exp(base, exp, e.n)
	wipeInt(kgx)
	wipeInt(exp)
	return S
}

// ComputeServerS computes the server shared secret S = (A * v^u) ^ b mod N.
//
//nolint:gocritic // A is capitalized per RFC 5054 notation
func (e *Engine) ComputeServerS(b, A, v, u *big.Int) *big.Int {
	base := new(big.Int).Exp(v, u, e.n)
	base.Mul(base, A)
	base.Mod(base, e.n)
	return base.Exp(base, b, e.n)
}

// ComputeK computes the strong session key K = H(S).
//
//nolint:gocritic // S is capitalized per RFC 5054 notation
func (e *Engine) ComputeK(S *big.Int) *big.Int {
	return e.digest(integer(S))
}

// ComputeClientProof computes M1 = H(H(N) xor H(g) | H(I) | s | A | B | K).
//
//nolint:gocritic // A, B, K are capitalized per RFC 5054 notation
func (e *Engine) ComputeClientProof(username string, salt []byte, A, B, K *big.Int) *big.Int {
	hn := e.digest(integer(e.n))
	hg := e.digest(integer(e.g))
	hi := e.digest(text(username))

	return e.digest(
		integer(hn.Xor(hn, hg)),
		integer(hi),
		raw(salt),
		integer(A),
		integer(B),
		integer(K),
	)
}

// ComputeServerProof computes M2 = H(A | M1 | K).
//
//nolint:gocritic // A, M1, K are capitalized per RFC 5054 notation
func (e *Engine) ComputeServerProof(A, M1, K *big.Int) *big.Int {
	return e.digest(integer(A), integer(M1), integer(K))
}

// digest hashes the encoded inputs in order and reads the result as an
// unsigned big-endian integer.
func (e *Engine) digest(inputs ...hashInput) *big.Int {
	parts := make([][]byte, len(inputs))
	for i, in := range inputs {
		parts[i] = in.encode()
	}
	return new(big.Int).SetBytes(e.hash(parts...))
}

// parseHex parses a big-endian hex string, ignoring whitespace and an
// optional 0x prefix.
func parseHex(s string) (*big.Int, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	if clean == "" {
		return nil, fmt.Errorf("%w: empty hex value", ErrInvalidParameter)
	}

	v, ok := new(big.Int).SetString(clean, 16)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: malformed hex value", ErrInvalidParameter)
	}
	return v, nil
}

// padLeft left-pads b with zeros to length n.
func padLeft(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}
