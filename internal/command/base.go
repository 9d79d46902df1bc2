// Package command implements the clica command line: a registry of named
// commands, each with its own flag set.
package command

import (
	"flag"
	"io"
)

// Command is one subcommand.
type Command interface {
	Name() string
	Description() string
	Usage() string

	// SetupFlags registers the command's flags on fs.
	SetupFlags(fs *flag.FlagSet)

	// Execute runs the command with the arguments left after flag parsing.
	Execute(args []string, stdout, stderr io.Writer) error
}

// BaseCommand implements the descriptive half of Command for embedding.
type BaseCommand struct {
	name        string
	description string
	usage       string
}

// NewBaseCommand creates a new BaseCommand.
func NewBaseCommand(name, description, usage string) *BaseCommand {
	return &BaseCommand{
		name:        name,
		description: description,
		usage:       usage,
	}
}

func (c *BaseCommand) Name() string        { return c.name }
func (c *BaseCommand) Description() string { return c.description }
func (c *BaseCommand) Usage() string       { return c.usage }

// SetupFlags registers no flags.
func (c *BaseCommand) SetupFlags(fs *flag.FlagSet) {}
