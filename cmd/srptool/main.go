// Package main provides srptool, a command-line tool for SRP-6a salts,
// verifier records and local handshakes.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fzdarsky/srp6a/internal/cli/clicontext"
	"github.com/fzdarsky/srp6a/internal/cli/commands"
)

var (
	// version is set by build flags
	version = "dev"
	// commit is set by build flags
	commit = "none"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args, command, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(1)
	}

	switch command {
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("srptool version %s (commit %s)\n", version, commit)
		os.Exit(0)
	}

	switch command {
	case "salt":
		commands.NewSaltCommand().Execute(args)
	case "verifier":
		commands.NewVerifierCommand().Execute(args)
	case "users":
		commands.NewUsersCommand().Execute(args)
	case "groups":
		commands.NewGroupsCommand().Execute(args)
	case "handshake":
		commands.NewHandshakeCommand().Execute(args)
	case "config":
		commands.NewConfigCommand().Execute(args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// parseGlobalFlags processes global flags and returns remaining args and the command.
// Global flags can appear anywhere in the argument list, in "--flag value"
// or "--flag=value" form:
//
//	srptool --config /etc/srptool.yaml users     (before command)
//	srptool users --output=json                  (after command)
func parseGlobalFlags(args []string) ([]string, string, error) {
	remainingArgs := make([]string, 0, len(args))
	var command string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		name, value, hasValue := strings.Cut(arg, "=")
		var set func(string)
		switch name {
		case "--config", "-c":
			set = clicontext.SetConfigPath
		case "--output", "-o":
			set = clicontext.SetOutput
		}

		if set != nil {
			if !hasValue {
				if i+1 >= len(args) {
					return nil, "", fmt.Errorf("flag %s requires a value", name)
				}
				i++
				value = args[i]
			}
			set(value)
			continue
		}

		// First non-flag argument is the command
		if command == "" && !isFlag(arg) {
			command = arg
			continue
		}

		// All other arguments are passed to the command
		remainingArgs = append(remainingArgs, arg)
	}

	return remainingArgs, command, nil
}

// isFlag returns true if the argument looks like a flag (starts with -).
func isFlag(arg string) bool {
	return len(arg) > 0 && arg[0] == '-'
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `srptool - SRP-6a verifier management and handshake tool

Usage:
  srptool <command> [flags]

Available Commands:
  salt         Generate a random salt
  verifier     Enroll a user (or delete one with --delete)
  users        List enrolled users
  groups       List the predefined RFC 5054 groups
  handshake    Authenticate a user against the verifier file
  config       Validate and print the effective configuration
  version      Show version information

Global Flags:
  --config, -c <path>    Configuration file (default: built-in defaults)
  --output, -o <format>  Output format: yaml (default) or json
  --help, -h             Show help information
  --version, -v          Show version information

Environment:
  SRPTOOL_VERIFIER_FILE  Overrides store.verifier_file

Examples:
  # Enroll a user
  srptool --config /etc/srptool/config.yaml verifier --username alice

  # Check a password end to end
  srptool handshake --username alice --password secret123

  # List users as JSON
  srptool users -o json

For detailed help on a specific command, run:
  srptool <command> --help

`)
}
