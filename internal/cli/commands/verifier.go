package commands

import (
	"flag"
	"fmt"
	"math/big"

	"github.com/fzdarsky/srp6a/internal/auth"
	"github.com/fzdarsky/srp6a/internal/cli/output"
	"github.com/fzdarsky/srp6a/pkg/srp"
)

// VerifierCommand implements the 'verifier' command for enrolling users.
type VerifierCommand struct {
	streams
}

// NewVerifierCommand creates a new verifier command instance.
func NewVerifierCommand() *VerifierCommand {
	return &VerifierCommand{streams: defaultStreams()}
}

// verifierSummary is printed after enrollment. It leaves out the salt and
// verifier values.
type verifierSummary struct {
	Username     string `yaml:"username" json:"username"`
	Group        string `yaml:"group" json:"group"`
	Hash         string `yaml:"hash" json:"hash"`
	SaltLength   int    `yaml:"salt_length" json:"salt_length"`
	VerifierBits int    `yaml:"verifier_bits" json:"verifier_bits"`
	VerifierFile string `yaml:"verifier_file" json:"verifier_file"`
}

// Execute runs the verifier command with the provided arguments.
func (c *VerifierCommand) Execute(args []string) {
	execute(c.Run, args)
}

// Run creates, replaces or deletes the verifier record of one user.
func (c *VerifierCommand) Run(args []string) error {
	fs := flag.NewFlagSet("verifier", flag.ContinueOnError)
	fs.SetOutput(c.errOut)

	username := fs.String("username", "", "Username to enroll")
	password := fs.String("password", "", "Password to enroll (prompts if not provided)")
	remove := fs.Bool("delete", false, "Delete the user's verifier record instead")

	fs.Usage = func() {
		fmt.Fprintf(c.errOut, `Usage: srptool verifier [flags]

Compute a salt and SRP verifier for a user and store them in the verifier
file. An existing record for the user is replaced.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(c.errOut, `
Examples:
  # Enroll interactively
  srptool verifier --username alice

  # Non-interactive
  srptool verifier --username alice --password secret123

  # Remove a user
  srptool verifier --username alice --delete
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, c.errOut)

	store, err := auth.LoadVerifierStore(cfg.Store.VerifierFile)
	if err != nil {
		return err
	}

	user := *username
	if user == "" {
		user = c.promptUsername()
	}
	if user == "" {
		return fmt.Errorf("username is required")
	}

	if *remove {
		if err := store.Delete(user); err != nil {
			return err
		}
		logger.Info("verifier record deleted", map[string]any{
			"username":      user,
			"verifier_file": store.Path(),
		})
		return nil
	}

	format, err := outputFormat()
	if err != nil {
		return err
	}

	pass := *password
	if pass == "" {
		if pass, err = c.promptPassword(); err != nil {
			return err
		}
	}

	params, err := cfg.Params()
	if err != nil {
		return err
	}
	engine, err := srp.NewParamsEngine(params)
	if err != nil {
		return fmt.Errorf("failed to create SRP engine: %w", err)
	}

	rec, err := auth.NewVerifierRecord(srp.NewCoordinator(engine), params, user, pass, cfg.SRP.SaltLength)
	if err != nil {
		return err
	}
	if err := store.Put(rec); err != nil {
		return err
	}

	logger.Info("verifier record written", map[string]any{
		"username":      rec.Username,
		"group":         rec.Group,
		"verifier_file": store.Path(),
	})

	return output.Write(c.out, verifierSummary{
		Username:     rec.Username,
		Group:        rec.Group,
		Hash:         rec.Hash,
		SaltLength:   len(rec.Salt),
		VerifierBits: new(big.Int).SetBytes(rec.Verifier).BitLen(),
		VerifierFile: store.Path(),
	}, format)
}
