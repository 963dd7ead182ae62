package srp

import (
	"fmt"
	"math/big"
)

// DefaultSaltLength is the salt length in bytes used when none is given.
const DefaultSaltLength = 16

// KeyPair is an ephemeral key pair. Both values are big-endian integers.
type KeyPair struct {
	Secret []byte
	Public []byte
}

// Wipe overwrites the secret half of the key pair.
func (kp *KeyPair) Wipe() {
	wipeBytes(kp.Secret)
	kp.Secret = nil
}

// Session holds the values derived by one side of a successful exchange.
type Session struct {
	// Key is the strong session key K = H(S).
	Key []byte
	// ClientProof is M1.
	ClientProof []byte
	// ServerProof is M2.
	ServerProof []byte
}

// Wipe overwrites all session material.
func (s *Session) Wipe() {
	wipeBytes(s.Key)
	wipeBytes(s.ClientProof)
	wipeBytes(s.ServerProof)
	s.Key, s.ClientProof, s.ServerProof = nil, nil, nil
}

// Coordinator derives ephemeral keys and sessions on top of an Engine.
// It holds no per-session state and may be shared.
type Coordinator struct {
	engine *Engine
	random RandomSource
}

// NewCoordinator creates a Coordinator that draws randomness from crypto/rand.
func NewCoordinator(engine *Engine) *Coordinator {
	return NewCoordinatorWithRandom(engine, nil)
}

// NewCoordinatorWithRandom creates a Coordinator with a custom random source.
// A nil source selects crypto/rand.
func NewCoordinatorWithRandom(engine *Engine, random RandomSource) *Coordinator {
	return &Coordinator{
		engine: engine,
		random: random,
	}
}

// Engine returns the underlying Engine.
func (c *Coordinator) Engine() *Engine {
	return c.engine
}

// GenerateSalt returns length random bytes. A non-positive length selects
// DefaultSaltLength.
func (c *Coordinator) GenerateSalt(length int) ([]byte, error) {
	if length <= 0 {
		length = DefaultSaltLength
	}
	salt, err := randomBytes(c.random, length)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// ComputePrivateKey computes x for the given credentials.
func (c *Coordinator) ComputePrivateKey(username, password string, salt []byte) []byte {
	x := c.engine.ComputeX(username, password, salt)
	defer wipeInt(x)
	return x.Bytes()
}

// ComputeVerifier computes v = g^x mod N for the given credentials.
func (c *Coordinator) ComputeVerifier(username, password string, salt []byte) []byte {
	x := c.engine.ComputeX(username, password, salt)
	v := c.engine.ComputeV(x)
	wipeInt(x)
	return v.Bytes()
}

// GenerateClientEphemeralKey draws a secret a of NBytes random bytes and
// computes A = g^a mod N.
func (c *Coordinator) GenerateClientEphemeralKey() (KeyPair, error) {
	secret, err := randomBytes(c.random, c.engine.NBytes())
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate client ephemeral key: %w", err)
	}

	a := new(big.Int).SetBytes(secret)
	A := c.engine.ComputeA(a)
	wipeInt(a)

	return KeyPair{Secret: secret, Public: A.Bytes()}, nil
}

// GenerateServerEphemeralKey draws a secret b of NBytes random bytes and
// computes B = (k*v + g^b) mod N.
func (c *Coordinator) GenerateServerEphemeralKey(verifier []byte) (KeyPair, error) {
	secret, err := randomBytes(c.random, c.engine.NBytes())
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate server ephemeral key: %w", err)
	}

	b := new(big.Int).SetBytes(secret)
	B := c.engine.ComputeB(b, new(big.Int).SetBytes(verifier))
	wipeInt(b)

	return KeyPair{Secret: secret, Public: B.Bytes()}, nil
}

// ComputeClientSession derives the client session from its key pair, the
// server public key B and the private key x.
//
// The second result is false when the exchange must be aborted: B is zero
// modulo N, or the scrambling parameter u is zero.
func (c *Coordinator) ComputeClientSession(keys KeyPair, serverPublicKey []byte, username string, salt, privateKey []byte) (*Session, bool) {
	e := c.engine
	B := new(big.Int).SetBytes(serverPublicKey)

	// Abort if B % N == 0
	if isZeroMod(B, e.n) {
		return nil, false
	}

	A := new(big.Int).SetBytes(keys.Public)

	// 1. Scrambling parameter; abort if u == 0
	u := e.ComputeU(A, B)
	if isZeroMod(u, e.n) {
		return nil, false
	}

	a := new(big.Int).SetBytes(keys.Secret)
	x := new(big.Int).SetBytes(privateKey)
	defer wipeInt(a)
	defer wipeInt(x)

	// 2. Shared secret
	S := e.ComputeClientS(a, B, x, u)
	defer wipeInt(S)

	return c.deriveSession(username, salt, A, B, S), true
}

// ComputeServerSession derives the server session from its key pair, the
// client public key A and the stored verifier.
//
// The second result is false when the exchange must be aborted: A is zero
// modulo N, or the scrambling parameter u is zero.
func (c *Coordinator) ComputeServerSession(keys KeyPair, clientPublicKey []byte, username string, verifier, salt []byte) (*Session, bool) {
	e := c.engine
	A := new(big.Int).SetBytes(clientPublicKey)

	// Abort if A % N == 0
	if isZeroMod(A, e.n) {
		return nil, false
	}

	B := new(big.Int).SetBytes(keys.Public)

	// 1. Scrambling parameter; abort if u == 0
	u := e.ComputeU(A, B)
	if isZeroMod(u, e.n) {
		return nil, false
	}

	b := new(big.Int).SetBytes(keys.Secret)
	v := new(big.Int).SetBytes(verifier)
	defer wipeInt(b)
	defer wipeInt(v)

	// 2. Shared secret
	S := e.ComputeServerS(b, A, v, u)
	defer wipeInt(S)

	return c.deriveSession(username, salt, A, B, S), true
}

// deriveSession runs steps 3-5: K = H(S), M1 and M2.
//
//nolint:gocritic // A, B, S are capitalized per RFC 5054 notation
func (c *Coordinator) deriveSession(username string, salt []byte, A, B, S *big.Int) *Session {
	e := c.engine

	K := e.ComputeK(S)
	M1 := e.ComputeClientProof(username, salt, A, B, K)
	M2 := e.ComputeServerProof(A, M1, K)

	session := &Session{
		Key:         K.Bytes(),
		ClientProof: M1.Bytes(),
		ServerProof: M2.Bytes(),
	}
	wipeInt(K)
	return session
}

func isZeroMod(v, n *big.Int) bool {
	return new(big.Int).Mod(v, n).Sign() == 0
}
