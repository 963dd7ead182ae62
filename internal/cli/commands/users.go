package commands

import (
	"flag"
	"fmt"

	"github.com/fzdarsky/srp6a/internal/auth"
	"github.com/fzdarsky/srp6a/internal/cli/output"
)

// UsersCommand implements the 'users' command for listing enrolled users.
type UsersCommand struct {
	streams
}

// NewUsersCommand creates a new users command instance.
func NewUsersCommand() *UsersCommand {
	return &UsersCommand{streams: defaultStreams()}
}

type userList struct {
	VerifierFile string   `yaml:"verifier_file" json:"verifier_file"`
	Users        []string `yaml:"users" json:"users"`
}

// Execute runs the users command with the provided arguments.
func (c *UsersCommand) Execute(args []string) {
	execute(c.Run, args)
}

// Run prints the usernames in the verifier file.
func (c *UsersCommand) Run(args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.Usage = func() {
		fmt.Fprintf(c.errOut, "Usage: srptool users\n\nList the users enrolled in the verifier file.\n")
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

	store, err := auth.LoadVerifierStore(cfg.Store.VerifierFile)
	if err != nil {
		return err
	}

	return output.Write(c.out, userList{VerifierFile: store.Path(), Users: store.Usernames()}, format)
}
