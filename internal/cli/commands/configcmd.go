package commands

import (
	"flag"
	"fmt"

	"github.com/fzdarsky/srp6a/internal/cli/output"
	"github.com/fzdarsky/srp6a/internal/config"
)

// ConfigCommand implements the 'config' command for checking the
// configuration.
type ConfigCommand struct {
	streams
}

// NewConfigCommand creates a new config command instance.
func NewConfigCommand() *ConfigCommand {
	return &ConfigCommand{streams: defaultStreams()}
}

// Execute runs the config command with the provided arguments.
func (c *ConfigCommand) Execute(args []string) {
	execute(c.Run, args)
}

// Run validates the effective configuration and prints it.
func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.Usage = func() {
		fmt.Fprintf(c.errOut, `Usage: srptool config

Validate the effective configuration (file, defaults and environment
overrides) and print it.
`)
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

	if err := config.Validate(cfg); err != nil {
		return err
	}

	return output.Write(c.out, cfg, format)
}
