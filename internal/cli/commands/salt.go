package commands

import (
	"encoding/base64"
	"flag"
	"fmt"

	"github.com/fzdarsky/srp6a/pkg/srp"
)

// SaltCommand implements the 'salt' command for generating random salts.
type SaltCommand struct {
	streams
}

// NewSaltCommand creates a new salt command instance.
func NewSaltCommand() *SaltCommand {
	return &SaltCommand{streams: defaultStreams()}
}

// Execute runs the salt command with the provided arguments.
func (c *SaltCommand) Execute(args []string) {
	execute(c.Run, args)
}

// Run generates a salt and prints it base64-encoded.
func (c *SaltCommand) Run(args []string) error {
	fs := flag.NewFlagSet("salt", flag.ContinueOnError)
	fs.SetOutput(c.errOut)

	length := fs.Int("length", 0, "Salt length in bytes (default: srp.salt_length from the configuration)")

	fs.Usage = func() {
		fmt.Fprintf(c.errOut, `Usage: srptool salt [flags]

Generate a random salt and print it base64-encoded.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *length < 0 {
		return fmt.Errorf("length must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := cfg.Engine()
	if err != nil {
		return fmt.Errorf("failed to create SRP engine: %w", err)
	}

	n := cfg.SRP.SaltLength
	if *length > 0 {
		n = *length
	}

	salt, err := srp.NewCoordinator(engine).GenerateSalt(n)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, base64.StdEncoding.EncodeToString(salt))
	return nil
}
