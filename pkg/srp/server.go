package srp

import (
	"bytes"
	"fmt"
)

// Server is the responder side of one SRP-6a exchange. It is keyed by the
// stored verifier and never sees the password.
//
// The server proof and the session key become readable only after the client
// proof has been verified, so a client that cannot prove knowledge of the
// password learns nothing it could use to test password guesses offline.
type Server struct {
	coord *Coordinator
	phase serverPhase
}

type serverPhase interface {
	state() State
}

type serverInit struct{}

type serverCredentialed struct {
	username string
	verifier []byte
	salt     []byte
	keys     KeyPair
}

type serverKeyed struct {
	publicKey     []byte
	proof         []byte
	expectedProof []byte
	sessionKey    []byte
}

type serverSucceeded struct {
	publicKey  []byte
	proof      []byte
	sessionKey []byte
}

type serverFailed struct {
	publicKey []byte
}

func (serverInit) state() State         { return StateInit }
func (serverCredentialed) state() State { return StateCredentialed }
func (serverKeyed) state() State        { return StateKeyed }
func (serverSucceeded) state() State    { return StateSuccess }
func (serverFailed) state() State       { return StateFailed }

// NewServer creates a Server that draws randomness from crypto/rand.
func NewServer(engine *Engine) *Server {
	return NewServerWithRandom(engine, nil)
}

// NewServerWithRandom creates a Server with a custom random source.
func NewServerWithRandom(engine *Engine, random RandomSource) *Server {
	return &Server{
		coord: NewCoordinatorWithRandom(engine, random),
		phase: serverInit{},
	}
}

// State returns the current state.
func (s *Server) State() State {
	return s.phase.state()
}

// SetCredentials stores the user's verifier and salt and generates the
// ephemeral key pair. Allowed only in the init state.
func (s *Server) SetCredentials(username string, verifier, salt []byte) error {
	if _, ok := s.phase.(serverInit); !ok {
		return stateError("SetCredentials", s.State(), StateInit)
	}

	keys, err := s.coord.GenerateServerEphemeralKey(verifier)
	if err != nil {
		return fmt.Errorf("SetCredentials: %w", err)
	}

	s.phase = serverCredentialed{
		username: username,
		verifier: bytes.Clone(verifier),
		salt:     bytes.Clone(salt),
		keys:     keys,
	}
	return nil
}

// PublicKey returns B. Available in every state after init.
func (s *Server) PublicKey() ([]byte, error) {
	switch p := s.phase.(type) {
	case serverCredentialed:
		return bytes.Clone(p.keys.Public), nil
	case serverKeyed:
		return bytes.Clone(p.publicKey), nil
	case serverSucceeded:
		return bytes.Clone(p.publicKey), nil
	case serverFailed:
		return bytes.Clone(p.publicKey), nil
	default:
		return nil, stateError("PublicKey", s.State(), StateCredentialed, StateKeyed, StateSuccess, StateFailed)
	}
}

// SetClientKey processes the client public key A. Allowed only in the
// credentialed state.
//
// It returns false, and moves to the failed state, when A is degenerate or
// the scrambling parameter is zero. A non-nil error is a usage error.
func (s *Server) SetClientKey(clientPublicKey []byte) (bool, error) {
	p, ok := s.phase.(serverCredentialed)
	if !ok {
		return false, stateError("SetClientKey", s.State(), StateCredentialed)
	}

	session, ok := s.coord.ComputeServerSession(p.keys, clientPublicKey, p.username, p.verifier, p.salt)

	publicKey := p.keys.Public
	wipeBytes(p.verifier)
	p.keys.Wipe()

	if !ok {
		s.phase = serverFailed{publicKey: publicKey}
		return false, nil
	}

	s.phase = serverKeyed{
		publicKey:     publicKey,
		proof:         session.ServerProof,
		expectedProof: session.ClientProof,
		sessionKey:    session.Key,
	}
	return true, nil
}

// ValidateProof checks the client proof M1 in constant time. Allowed only in
// the keyed state. It returns true and moves to success on a match, or
// returns false and moves to failed.
func (s *Server) ValidateProof(clientProof []byte) (bool, error) {
	p, ok := s.phase.(serverKeyed)
	if !ok {
		return false, stateError("ValidateProof", s.State(), StateKeyed)
	}

	match := ConstantTimeEqual(clientProof, p.expectedProof)
	wipeBytes(p.expectedProof)

	if !match {
		wipeBytes(p.proof)
		wipeBytes(p.sessionKey)
		s.phase = serverFailed{publicKey: p.publicKey}
		return false, nil
	}

	s.phase = serverSucceeded{
		publicKey:  p.publicKey,
		proof:      p.proof,
		sessionKey: p.sessionKey,
	}
	return true, nil
}

// Proof returns the server proof M2. Available only in the success state.
func (s *Server) Proof() ([]byte, error) {
	p, ok := s.phase.(serverSucceeded)
	if !ok {
		return nil, stateError("Proof", s.State(), StateSuccess)
	}
	return bytes.Clone(p.proof), nil
}

// SessionKey returns K. Available only in the success state.
func (s *Server) SessionKey() ([]byte, error) {
	p, ok := s.phase.(serverSucceeded)
	if !ok {
		return nil, stateError("SessionKey", s.State(), StateSuccess)
	}
	return bytes.Clone(p.sessionKey), nil
}

// Close abandons a non-terminal exchange: secret material is wiped and the
// server moves to the failed state. Terminal states are left untouched.
func (s *Server) Close() {
	switch p := s.phase.(type) {
	case serverInit:
		s.phase = serverFailed{}
	case serverCredentialed:
		publicKey := p.keys.Public
		wipeBytes(p.verifier)
		p.keys.Wipe()
		s.phase = serverFailed{publicKey: publicKey}
	case serverKeyed:
		wipeBytes(p.proof)
		wipeBytes(p.expectedProof)
		wipeBytes(p.sessionKey)
		s.phase = serverFailed{publicKey: p.publicKey}
	}
}
