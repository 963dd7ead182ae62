package commands

import (
	"flag"
	"fmt"

	"github.com/fzdarsky/srp6a/internal/cli/output"
	"github.com/fzdarsky/srp6a/pkg/srp"
)

// GroupsCommand implements the 'groups' command for listing named groups.
type GroupsCommand struct {
	streams
}

// NewGroupsCommand creates a new groups command instance.
func NewGroupsCommand() *GroupsCommand {
	return &GroupsCommand{streams: defaultStreams()}
}

type groupInfo struct {
	Name      string `yaml:"name" json:"name"`
	Bits      int    `yaml:"bits" json:"bits"`
	Generator string `yaml:"generator" json:"generator"`
	Selected  bool   `yaml:"selected" json:"selected"`
}

// Execute runs the groups command with the provided arguments.
func (c *GroupsCommand) Execute(args []string) {
	execute(c.Run, args)
}

// Run prints the predefined groups and marks the configured one.
func (c *GroupsCommand) Run(args []string) error {
	fs := flag.NewFlagSet("groups", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.Usage = func() {
		fmt.Fprintf(c.errOut, "Usage: srptool groups\n\nList the predefined RFC 5054 groups.\n")
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

	params, err := cfg.Params()
	if err != nil {
		return err
	}

	names := srp.GroupNames()
	groups := make([]groupInfo, 0, len(names))
	for _, name := range names {
		group, err := srp.LookupGroup(name)
		if err != nil {
			return err
		}
		engine, err := srp.NewGroupEngine(group, params.Hash)
		if err != nil {
			return fmt.Errorf("group %s: %w", name, err)
		}
		groups = append(groups, groupInfo{
			Name:      name,
			Bits:      engine.NBits(),
			Generator: engine.G().String(),
			Selected:  name == params.Group.Name,
		})
	}

	return output.Write(c.out, groups, format)
}
