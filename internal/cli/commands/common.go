// Package commands provides CLI command implementations for srptool.
package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fzdarsky/srp6a/internal/cli/clicontext"
	"github.com/fzdarsky/srp6a/internal/cli/output"
	"github.com/fzdarsky/srp6a/internal/config"
	"github.com/fzdarsky/srp6a/internal/logging"
	"golang.org/x/term"
)

// streams are the standard streams a command reads from and writes to.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func defaultStreams() streams {
	return streams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

// execute runs a command and exits with status 1 on failure.
func execute(run func([]string) error, args []string) {
	err := run(args)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	default:
		exitWithError("%v", err)
	}
}

// loadConfig loads the file named by the global --config flag, or the
// built-in defaults when none was given.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(clicontext.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger creates a logger from the configuration. All log output goes to
// w so that stdout carries only command results.
func newLogger(cfg *config.Config, w io.Writer) *logging.Logger {
	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))
	logger.SetOutput(w, w)
	return logger
}

func outputFormat() (output.Format, error) {
	return output.ParseFormat(clicontext.Output())
}

// exitWithError prints an error message to stderr and exits with status 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// promptUsername prompts the user to enter their username.
func (s streams) promptUsername() string {
	fmt.Fprintf(s.errOut, "Username: ")
	reader := bufio.NewReader(s.in)
	username, _ := reader.ReadString('\n')
	return strings.TrimSpace(username)
}

// promptPassword prompts the user to enter their password (hidden input).
func (s streams) promptPassword() (string, error) {
	fmt.Fprintf(s.errOut, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintf(s.errOut, "\n")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
