// Package auth drives the responder side of SRP-6a handshakes for an
// application: it keeps verifier records on disk and pending handshakes in
// memory.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fzdarsky/srp6a/internal/logging"
	"github.com/fzdarsky/srp6a/pkg/protocol"
	"github.com/fzdarsky/srp6a/pkg/srp"
	"golang.org/x/crypto/hkdf"
)

// decoySecretLength is the size of the per-authenticator key that decoy
// credentials for unknown users are derived from.
const decoySecretLength = 32

var (
	// ErrUnknownUser is returned when no verifier record exists for a user.
	ErrUnknownUser = errors.New("unknown user")

	// ErrSessionNotFound is returned when a handshake session ID is unknown,
	// already used or expired.
	ErrSessionNotFound = errors.New("handshake session not found")

	// ErrAuthenticationFailed is returned for every negative protocol
	// outcome. It does not say which check failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrParameterMismatch is returned when a verifier record was created for
	// a different group or hash than the authenticator uses.
	ErrParameterMismatch = errors.New("verifier record parameters do not match")
)

// Authenticator runs responder handshakes against a verifier store.
// It is safe for concurrent use; each handshake gets its own srp.Server.
//
// Unknown users get a decoy challenge whose salt and verifier are derived
// from a random secret, so Begin answers the same way for every username
// and the handshake only fails at the proof check.
type Authenticator struct {
	engine      *srp.Engine
	params      srp.Params
	fingerprint string
	verifiers   *VerifierStore
	handshakes  *HandshakeStore
	random      srp.RandomSource
	decoySecret []byte
	saltLength  int
	logger      *logging.Logger
}

// NewAuthenticator creates an Authenticator for the given parameters.
func NewAuthenticator(params srp.Params, verifiers *VerifierStore, handshakes *HandshakeStore, logger *logging.Logger) (*Authenticator, error) {
	engine, err := srp.NewParamsEngine(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRP engine: %w", err)
	}

	decoySecret := make([]byte, decoySecretLength)
	if _, err := io.ReadFull(rand.Reader, decoySecret); err != nil {
		return nil, fmt.Errorf("failed to generate decoy secret: %w", err)
	}

	return &Authenticator{
		engine:      engine,
		params:      params,
		fingerprint: GroupFingerprint(engine),
		verifiers:   verifiers,
		handshakes:  handshakes,
		decoySecret: decoySecret,
		saltLength:  srp.DefaultSaltLength,
		logger:      logger,
	}, nil
}

// SetSaltLength sets the salt length of decoy challenges. It should match
// the length used at enrollment. Non-positive values are ignored.
func (a *Authenticator) SetSaltLength(n int) {
	if n > 0 {
		a.saltLength = n
	}
}

// SetRandom replaces the random source used for ephemeral keys. A nil
// source selects crypto/rand.
func (a *Authenticator) SetRandom(random srp.RandomSource) {
	a.random = random
}

// Begin starts a handshake for hello.Username and returns the challenge to
// send to the initiator.
func (a *Authenticator) Begin(hello *protocol.Hello) (*protocol.Challenge, error) {
	if err := hello.Validate(); err != nil {
		return nil, err
	}

	log := a.logger.WithFields(map[string]any{"username": hello.Username})

	rec, err := a.verifiers.Lookup(hello.Username)
	switch {
	case errors.Is(err, ErrUnknownUser):
		log.Warn("no verifier record, issuing decoy challenge")
		rec, err = a.decoyRecord(hello.Username)
		if err != nil {
			log.Error("failed to derive decoy record", map[string]any{"error": err.Error()})
			return nil, fmt.Errorf("failed to start handshake: %w", err)
		}
	case err != nil:
		return nil, err
	}

	if err := a.checkRecord(rec); err != nil {
		log.Error("verifier record parameters do not match configuration", map[string]any{
			"record_group":       rec.Group,
			"record_hash":        rec.Hash,
			"record_fingerprint": rec.Fingerprint,
			"group":              a.params.Group.Name,
			"hash":               a.params.HashName,
			"fingerprint":        a.fingerprint,
		})
		return nil, err
	}

	server := srp.NewServerWithRandom(a.engine, a.random)
	if err := server.SetCredentials(rec.Username, rec.Verifier, rec.Salt); err != nil {
		log.Error("failed to set responder credentials", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("failed to start handshake: %w", err)
	}

	publicKey, err := server.PublicKey()
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to start handshake: %w", err)
	}

	sessionID, err := a.handshakes.Store(rec.Username, server)
	if err != nil {
		server.Close()
		log.Error("failed to store handshake", map[string]any{"error": err.Error()})
		return nil, err
	}

	log.Info("handshake started", map[string]any{"session_id": sessionID})

	return &protocol.Challenge{
		SessionID:       sessionID,
		Salt:            rec.Salt,
		ServerPublicKey: publicKey,
		Group:           a.params.Group.Name,
		Hash:            a.params.HashName,
	}, nil
}

// checkRecord refuses records made for other parameters. Records of a group
// outside the RFC 5054 table must carry a fingerprint, since custom groups
// share a name.
func (a *Authenticator) checkRecord(rec VerifierRecord) error {
	mismatch := rec.Group != a.params.Group.Name ||
		(a.params.HashName != "" && normalizeHashName(rec.Hash) != normalizeHashName(a.params.HashName))

	switch {
	case rec.Fingerprint != "":
		mismatch = mismatch || rec.Fingerprint != a.fingerprint
	case !isTableGroup(a.params.Group):
		mismatch = true
	}

	if mismatch {
		return fmt.Errorf("%w: record uses %s/%s", ErrParameterMismatch, rec.Group, rec.Hash)
	}
	return nil
}

// decoyRecord derives a stable salt and verifier for an unknown username.
// The same username yields the same salt for the authenticator's lifetime.
func (a *Authenticator) decoyRecord(username string) (VerifierRecord, error) {
	kdf := hkdf.New(sha256.New, a.decoySecret, nil, []byte("srp6a decoy "+username))

	salt := make([]byte, a.saltLength)
	if _, err := io.ReadFull(kdf, salt); err != nil {
		return VerifierRecord{}, err
	}
	password := make([]byte, decoySecretLength)
	if _, err := io.ReadFull(kdf, password); err != nil {
		return VerifierRecord{}, err
	}
	defer clear(password)

	return VerifierRecord{
		Username:    username,
		Salt:        salt,
		Verifier:    srp.NewCoordinator(a.engine).ComputeVerifier(username, string(password), salt),
		Group:       a.params.Group.Name,
		Hash:        a.params.HashName,
		Fingerprint: a.fingerprint,
	}, nil
}

func isTableGroup(group srp.Group) bool {
	known, err := srp.LookupGroup(group.Name)
	return err == nil && known == group
}

func normalizeHashName(name string) string {
	if canonical, ok := srp.CanonicalHashName(name); ok {
		return canonical
	}
	return strings.ToLower(strings.ReplaceAll(name, "-", ""))
}

// Finish completes the handshake named by proof.SessionID. On success it
// returns the server proof for the initiator and the shared session key.
// Every negative protocol outcome yields ErrAuthenticationFailed.
func (a *Authenticator) Finish(proof *protocol.ClientProof) (*protocol.ServerProof, []byte, error) {
	if err := proof.Validate(); err != nil {
		return nil, nil, err
	}

	server, username, ok := a.handshakes.Retrieve(proof.SessionID)
	if !ok {
		a.logger.Warn("handshake rejected: unknown or expired session", map[string]any{"session_id": proof.SessionID})
		return nil, nil, ErrSessionNotFound
	}
	defer server.Close()

	log := a.logger.WithFields(map[string]any{"session_id": proof.SessionID, "username": username})

	ok, err := server.SetClientKey(proof.ClientPublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to process client key: %w", err)
	}
	if !ok {
		log.Warn("handshake aborted: degenerate client key or scrambling parameter")
		return nil, nil, ErrAuthenticationFailed
	}

	ok, err = server.ValidateProof(proof.Proof)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate client proof: %w", err)
	}
	if !ok {
		log.Warn("handshake failed: client proof mismatch")
		return nil, nil, ErrAuthenticationFailed
	}

	serverProof, err := server.Proof()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read server proof: %w", err)
	}
	sessionKey, err := server.SessionKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read session key: %w", err)
	}

	log.Info("handshake succeeded")

	return &protocol.ServerProof{Proof: serverProof}, sessionKey, nil
}

// ErrorResponse maps an error from Begin or Finish to the response sent to
// the initiator. Every failed check maps to the same code.
func ErrorResponse(err error) *protocol.ErrorResponse {
	var resp *protocol.ErrorResponse
	switch {
	case err == nil:
		return nil
	case errors.As(err, &resp):
		return resp
	case errors.Is(err, ErrUnknownUser), errors.Is(err, ErrAuthenticationFailed):
		return protocol.NewAuthenticationFailedError()
	case errors.Is(err, ErrSessionNotFound):
		return protocol.NewSessionInvalidError()
	case errors.Is(err, ErrParameterMismatch):
		return protocol.NewInvalidConfigurationError("verifier record does not match configured SRP parameters")
	default:
		return protocol.NewSystemError("internal error")
	}
}
