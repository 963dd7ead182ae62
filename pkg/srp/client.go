package srp

import (
	"bytes"
	"fmt"
)

// Client is the initiator side of one SRP-6a exchange.
//
// States: init -> credentialed -> keyed -> success | failed.
// The private key x and the ephemeral secret a are wiped as soon as the
// session has been derived or the exchange has been aborted.
type Client struct {
	coord *Coordinator
	phase clientPhase
}

// clientPhase carries exactly the data valid in one state.
type clientPhase interface {
	state() State
}

type clientInit struct{}

type clientCredentialed struct {
	username   string
	salt       []byte
	privateKey []byte
	keys       KeyPair
}

type clientKeyed struct {
	publicKey     []byte
	proof         []byte
	expectedProof []byte
	sessionKey    []byte
}

type clientSucceeded struct {
	publicKey  []byte
	proof      []byte
	sessionKey []byte
}

type clientFailed struct {
	publicKey []byte
}

func (clientInit) state() State         { return StateInit }
func (clientCredentialed) state() State { return StateCredentialed }
func (clientKeyed) state() State        { return StateKeyed }
func (clientSucceeded) state() State    { return StateSuccess }
func (clientFailed) state() State       { return StateFailed }

// NewClient creates a Client that draws randomness from crypto/rand.
func NewClient(engine *Engine) *Client {
	return NewClientWithRandom(engine, nil)
}

// NewClientWithRandom creates a Client with a custom random source.
func NewClientWithRandom(engine *Engine, random RandomSource) *Client {
	return &Client{
		coord: NewCoordinatorWithRandom(engine, random),
		phase: clientInit{},
	}
}

// State returns the current state.
func (c *Client) State() State {
	return c.phase.state()
}

// SetCredentials derives the private key from the credentials and generates
// the ephemeral key pair. Allowed only in the init state.
func (c *Client) SetCredentials(username, password string, salt []byte) error {
	if _, ok := c.phase.(clientInit); !ok {
		return stateError("SetCredentials", c.State(), StateInit)
	}

	keys, err := c.coord.GenerateClientEphemeralKey()
	if err != nil {
		return fmt.Errorf("SetCredentials: %w", err)
	}

	c.phase = clientCredentialed{
		username:   username,
		salt:       bytes.Clone(salt),
		privateKey: c.coord.ComputePrivateKey(username, password, salt),
		keys:       keys,
	}
	return nil
}

// PublicKey returns A. Available in every state after init.
func (c *Client) PublicKey() ([]byte, error) {
	switch p := c.phase.(type) {
	case clientCredentialed:
		return bytes.Clone(p.keys.Public), nil
	case clientKeyed:
		return bytes.Clone(p.publicKey), nil
	case clientSucceeded:
		return bytes.Clone(p.publicKey), nil
	case clientFailed:
		return bytes.Clone(p.publicKey), nil
	default:
		return nil, stateError("PublicKey", c.State(), StateCredentialed, StateKeyed, StateSuccess, StateFailed)
	}
}

// SetServerKey processes the server public key B. Allowed only in the
// credentialed state.
//
// It returns false, and moves to the failed state, when B is degenerate or
// the scrambling parameter is zero. A non-nil error is a usage error.
func (c *Client) SetServerKey(serverPublicKey []byte) (bool, error) {
	p, ok := c.phase.(clientCredentialed)
	if !ok {
		return false, stateError("SetServerKey", c.State(), StateCredentialed)
	}

	session, ok := c.coord.ComputeClientSession(p.keys, serverPublicKey, p.username, p.salt, p.privateKey)

	publicKey := p.keys.Public
	wipeBytes(p.privateKey)
	p.keys.Wipe()

	if !ok {
		c.phase = clientFailed{publicKey: publicKey}
		return false, nil
	}

	c.phase = clientKeyed{
		publicKey:     publicKey,
		proof:         session.ClientProof,
		expectedProof: session.ServerProof,
		sessionKey:    session.Key,
	}
	return true, nil
}

// Proof returns the client proof M1. Available in the keyed and success
// states.
func (c *Client) Proof() ([]byte, error) {
	switch p := c.phase.(type) {
	case clientKeyed:
		return bytes.Clone(p.proof), nil
	case clientSucceeded:
		return bytes.Clone(p.proof), nil
	default:
		return nil, stateError("Proof", c.State(), StateKeyed, StateSuccess)
	}
}

// ValidateProof checks the server proof M2 in constant time. Allowed only in
// the keyed state. It returns true and moves to success on a match, or
// returns false and moves to failed.
func (c *Client) ValidateProof(serverProof []byte) (bool, error) {
	p, ok := c.phase.(clientKeyed)
	if !ok {
		return false, stateError("ValidateProof", c.State(), StateKeyed)
	}

	match := ConstantTimeEqual(serverProof, p.expectedProof)
	wipeBytes(p.expectedProof)

	if !match {
		wipeBytes(p.proof)
		wipeBytes(p.sessionKey)
		c.phase = clientFailed{publicKey: p.publicKey}
		return false, nil
	}

	c.phase = clientSucceeded{
		publicKey:  p.publicKey,
		proof:      p.proof,
		sessionKey: p.sessionKey,
	}
	return true, nil
}

// SessionKey returns K. Available only in the success state.
func (c *Client) SessionKey() ([]byte, error) {
	p, ok := c.phase.(clientSucceeded)
	if !ok {
		return nil, stateError("SessionKey", c.State(), StateSuccess)
	}
	return bytes.Clone(p.sessionKey), nil
}

// Close abandons a non-terminal exchange: secret material is wiped and the
// client moves to the failed state. Terminal states are left untouched.
func (c *Client) Close() {
	switch p := c.phase.(type) {
	case clientInit:
		c.phase = clientFailed{}
	case clientCredentialed:
		publicKey := p.keys.Public
		wipeBytes(p.privateKey)
		p.keys.Wipe()
		c.phase = clientFailed{publicKey: publicKey}
	case clientKeyed:
		wipeBytes(p.proof)
		wipeBytes(p.expectedProof)
		wipeBytes(p.sessionKey)
		c.phase = clientFailed{publicKey: p.publicKey}
	}
}
