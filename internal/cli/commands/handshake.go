package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/fzdarsky/srp6a/internal/auth"
	"github.com/fzdarsky/srp6a/internal/cli/output"
	"github.com/fzdarsky/srp6a/internal/config"
	"github.com/fzdarsky/srp6a/internal/logging"
	"github.com/fzdarsky/srp6a/pkg/protocol"
	"github.com/fzdarsky/srp6a/pkg/srp"
)

// ErrHandshakeFailed is returned by Run when the handshake did not
// authenticate. The result is still printed.
var ErrHandshakeFailed = errors.New("authentication failed")

// HandshakeCommand implements the 'handshake' command. It runs an initiator
// and a responder in-process against the verifier file.
type HandshakeCommand struct {
	streams
}

// NewHandshakeCommand creates a new handshake command instance.
func NewHandshakeCommand() *HandshakeCommand {
	return &HandshakeCommand{streams: defaultStreams()}
}

type handshakeResult struct {
	Username       string `yaml:"username" json:"username"`
	Group          string `yaml:"group" json:"group"`
	Hash           string `yaml:"hash" json:"hash"`
	Authenticated  bool   `yaml:"authenticated" json:"authenticated"`
	ErrorCode      string `yaml:"error_code,omitempty" json:"error_code,omitempty"`
	KeyFingerprint string `yaml:"key_fingerprint,omitempty" json:"key_fingerprint,omitempty"`
	BytesExchanged int    `yaml:"bytes_exchanged" json:"bytes_exchanged"`
}

// Execute runs the handshake command with the provided arguments.
func (c *HandshakeCommand) Execute(args []string) {
	execute(c.Run, args)
}

// Run performs one handshake and prints its outcome.
func (c *HandshakeCommand) Run(args []string) error {
	fs := flag.NewFlagSet("handshake", flag.ContinueOnError)
	fs.SetOutput(c.errOut)

	username := fs.String("username", "", "Username for authentication")
	password := fs.String("password", "", "Password for authentication (prompts if not provided)")

	fs.Usage = func() {
		fmt.Fprintf(c.errOut, `Usage: srptool handshake [flags]

Authenticate against the verifier file using SRP-6a. Every message between
the initiator and the responder passes through its JSON encoding.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := outputFormat()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, c.errOut)

	user := *username
	if user == "" {
		user = c.promptUsername()
	}
	if user == "" {
		return fmt.Errorf("username is required")
	}

	pass := *password
	if pass == "" {
		if pass, err = c.promptPassword(); err != nil {
			return err
		}
	}

	result, err := c.handshake(cfg, logger, user, pass)
	if err != nil {
		return err
	}

	if err := output.Write(c.out, result, format); err != nil {
		return err
	}

	if !result.Authenticated {
		return ErrHandshakeFailed
	}
	return nil
}

// handshake runs both roles. Negative protocol outcomes are reported in the
// result; the error is reserved for local failures.
func (c *HandshakeCommand) handshake(cfg *config.Config, logger *logging.Logger, username, password string) (*handshakeResult, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	engine, err := srp.NewParamsEngine(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRP engine: %w", err)
	}

	ttl, err := cfg.GetHandshakeTTL()
	if err != nil {
		return nil, err
	}

	verifiers, err := auth.LoadVerifierStore(cfg.Store.VerifierFile)
	if err != nil {
		return nil, err
	}

	handshakes := auth.NewHandshakeStore(ttl)
	defer handshakes.Stop()

	authenticator, err := auth.NewAuthenticator(params, verifiers, handshakes, logger)
	if err != nil {
		return nil, err
	}
	authenticator.SetSaltLength(cfg.SRP.SaltLength)

	result := &handshakeResult{Username: username, Group: params.Group.Name, Hash: params.HashName}
	wire := &transcript{}

	// fail delivers a responder error to the initiator.
	fail := func(resp *protocol.ErrorResponse) (*handshakeResult, error) {
		var received protocol.ErrorResponse
		if err := wire.transmit(resp, &received); err != nil {
			return nil, err
		}
		result.ErrorCode = string(received.Code)
		result.BytesExchanged = wire.bytes
		return result, nil
	}

	var hello protocol.Hello
	if err := wire.transmit(&protocol.Hello{Username: username}, &hello); err != nil {
		return nil, err
	}

	challenge, err := authenticator.Begin(&hello)
	if err != nil {
		return fail(auth.ErrorResponse(err))
	}

	var receivedChallenge protocol.Challenge
	if err := wire.transmit(challenge, &receivedChallenge); err != nil {
		return nil, err
	}
	if err := receivedChallenge.Validate(); err != nil {
		return nil, err
	}
	if receivedChallenge.Group != params.Group.Name || receivedChallenge.Hash != params.HashName {
		return nil, fmt.Errorf("responder uses %s/%s, expected %s/%s",
			receivedChallenge.Group, receivedChallenge.Hash, params.Group.Name, params.HashName)
	}

	client := srp.NewClient(engine)
	defer client.Close()

	if err := client.SetCredentials(username, password, receivedChallenge.Salt); err != nil {
		return nil, err
	}

	ok, err := client.SetServerKey(receivedChallenge.ServerPublicKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warn("handshake aborted: degenerate server key or scrambling parameter", map[string]any{"username": username})
		result.ErrorCode = string(protocol.ErrCodeAuthenticationFailed)
		result.BytesExchanged = wire.bytes
		return result, nil
	}

	publicKey, err := client.PublicKey()
	if err != nil {
		return nil, err
	}
	clientProof, err := client.Proof()
	if err != nil {
		return nil, err
	}

	var receivedProof protocol.ClientProof
	if err := wire.transmit(&protocol.ClientProof{
		SessionID:       receivedChallenge.SessionID,
		ClientPublicKey: publicKey,
		Proof:           clientProof,
	}, &receivedProof); err != nil {
		return nil, err
	}

	serverProof, serverKey, err := authenticator.Finish(&receivedProof)
	if err != nil {
		return fail(auth.ErrorResponse(err))
	}

	var receivedServerProof protocol.ServerProof
	if err := wire.transmit(serverProof, &receivedServerProof); err != nil {
		return nil, err
	}
	result.BytesExchanged = wire.bytes

	ok, err = client.ValidateProof(receivedServerProof.Proof)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warn("handshake failed: server proof mismatch", map[string]any{"username": username})
		result.ErrorCode = string(protocol.ErrCodeAuthenticationFailed)
		return result, nil
	}

	clientKey, err := client.SessionKey()
	if err != nil {
		return nil, err
	}
	if !srp.ConstantTimeEqual(clientKey, serverKey) {
		return nil, fmt.Errorf("session keys differ after mutual authentication")
	}

	sum := sha256.Sum256(clientKey)
	result.KeyFingerprint = hex.EncodeToString(sum[:8])
	result.Authenticated = true

	return result, nil
}

// transcript passes payloads between the roles through their JSON encoding
// and counts the bytes.
type transcript struct {
	bytes int
}

func (t *transcript) transmit(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %T: %w", in, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %T: %w", out, err)
	}
	t.bytes += len(data)
	return nil
}
