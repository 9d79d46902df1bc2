package command

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/joeycumines/clica/internal/config"
	"github.com/joeycumines/clica/internal/storage"
)

// HelpCommand displays help information for commands.
type HelpCommand struct {
	*BaseCommand
	registry *Registry
}

// NewHelpCommand creates a new help command.
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{
		BaseCommand: NewBaseCommand(
			"help",
			"Display help information for commands",
			"help [command]",
		),
		registry: registry,
	}
}

// Execute displays help information.
func (c *HelpCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, "clica - train a coding agent by demonstration, one keystroke at a time")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Usage: clica [command] [options] [args...]")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintf(stdout, "With no command, %q starts the interactive session.\n", DefaultCommand)
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Available commands:")

		w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
		for _, name := range c.registry.List() {
			if cmd, err := c.registry.Get(name); err == nil {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", name, cmd.Description())
			}
		}
		_ = w.Flush()

		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Use 'clica help <command>' for more information about a specific command (includes flags).")
		return nil
	}

	cmd, err := c.registry.Get(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		return err
	}

	_, _ = fmt.Fprintf(stdout, "Command: %s\n", cmd.Name())
	_, _ = fmt.Fprintf(stdout, "Description: %s\n", cmd.Description())
	_, _ = fmt.Fprintf(stdout, "Usage: clica %s\n", cmd.Usage())

	// Flags are discovered by running SetupFlags on a throwaway FlagSet.
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	buf := &bytes.Buffer{}
	fs.SetOutput(buf)
	cmd.SetupFlags(fs)
	fs.PrintDefaults()
	if buf.Len() > 0 {
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Flags:")
		_, _ = fmt.Fprint(stdout, buf.String())
	}
	return nil
}

// VersionCommand displays version information.
type VersionCommand struct {
	*BaseCommand
	version string
}

// NewVersionCommand creates a new version command.
func NewVersionCommand(version string) *VersionCommand {
	return &VersionCommand{
		BaseCommand: NewBaseCommand(
			"version",
			"Display version information",
			"version",
		),
		version: version,
	}
}

// Execute displays version information.
func (c *VersionCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	_, _ = fmt.Fprintf(stdout, "clica version %s\n", c.version)
	return nil
}

// ConfigCommand manages configuration.
type ConfigCommand struct {
	*BaseCommand
	config     *config.Config
	configPath string
	showGlobal bool
	showAll    bool
}

// NewConfigCommand creates a new config command. An empty configPath skips
// persistence to disk.
func NewConfigCommand(cfg *config.Config, configPath string) *ConfigCommand {
	return &ConfigCommand{
		BaseCommand: NewBaseCommand(
			"config",
			"Manage configuration settings",
			"config [options] [key] [value]",
		),
		config:     cfg,
		configPath: configPath,
	}
}

// SetupFlags configures the flags for the config command.
func (c *ConfigCommand) SetupFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.showGlobal, "global", false, "Show only global configuration")
	fs.BoolVar(&c.showAll, "all", false, "Show all configuration (global and command-specific)")
}

// Execute manages configuration.
func (c *ConfigCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		switch {
		case c.showAll:
			c.printGlobal(stdout)
			_, _ = fmt.Fprintln(stdout, "\nCommand-specific configuration:")
			for _, cmd := range slices.Sorted(maps.Keys(c.config.Commands)) {
				_, _ = fmt.Fprintf(stdout, "  [%s]\n", cmd)
				options := c.config.Commands[cmd]
				for _, key := range slices.Sorted(maps.Keys(options)) {
					_, _ = fmt.Fprintf(stdout, "    %s: %s\n", key, options[key])
				}
			}
		case c.showGlobal:
			c.printGlobal(stdout)
		default:
			_, _ = fmt.Fprintln(stdout, "Configuration management:")
			_, _ = fmt.Fprintln(stdout, "  config <key>          - Get configuration value")
			_, _ = fmt.Fprintln(stdout, "  config <key> <value>  - Set configuration value")
			_, _ = fmt.Fprintln(stdout, "  config -global        - Show global configuration")
			_, _ = fmt.Fprintln(stdout, "  config -all           - Show all configuration")
			_, _ = fmt.Fprintln(stdout, "  config validate       - Validate configuration")
			_, _ = fmt.Fprintln(stdout, "  config schema         - Show configuration schema")
		}
		return nil
	}

	switch args[0] {
	case "validate":
		return c.executeValidate(stdout)
	case "schema":
		_, _ = fmt.Fprint(stdout, config.DefaultSchema().FormatHelp())
		return nil
	}

	switch len(args) {
	case 1:
		// Resolution order is env, then file, then schema default.
		key := args[0]
		value := config.DefaultSchema().Resolve(c.config, key)
		if value != "" {
			_, _ = fmt.Fprintf(stdout, "%s: %s\n", key, value)
		} else if _, exists := c.config.GetGlobalOption(key); exists {
			_, _ = fmt.Fprintf(stdout, "%s: \n", key)
		} else {
			_, _ = fmt.Fprintf(stdout, "Configuration key '%s' not found\n", key)
		}
		return nil

	case 2:
		key, value := args[0], args[1]
		if opt := config.DefaultSchema().Lookup("", key); opt == nil {
			_, _ = fmt.Fprintf(stderr, "Warning: unknown configuration key %q\n", key)
		}
		c.config.SetGlobalOption(key, value)
		if c.configPath != "" {
			if err := config.SetKeyInFile(c.configPath, key, value); err != nil {
				_, _ = fmt.Fprintf(stderr, "Warning: failed to persist config to disk: %v\n", err)
			}
		}
		_, _ = fmt.Fprintf(stdout, "Set configuration: %s = %s\n", key, value)
		return nil
	}

	_, _ = fmt.Fprintln(stderr, "Invalid number of arguments")
	return fmt.Errorf("invalid arguments")
}

func (c *ConfigCommand) printGlobal(stdout io.Writer) {
	_, _ = fmt.Fprintln(stdout, "Global configuration:")
	for _, key := range slices.Sorted(maps.Keys(c.config.Global)) {
		_, _ = fmt.Fprintf(stdout, "  %s: %s\n", key, c.config.Global[key])
	}
}

// executeValidate validates the current config against the schema.
func (c *ConfigCommand) executeValidate(stdout io.Writer) error {
	issues := config.ValidateConfig(c.config, config.DefaultSchema())
	if len(issues) == 0 {
		_, _ = fmt.Fprintln(stdout, "Configuration is valid.")
		return nil
	}
	_, _ = fmt.Fprintf(stdout, "Configuration has %d issue(s):\n", len(issues))
	for _, issue := range issues {
		_, _ = fmt.Fprintf(stdout, "  - %s\n", issue)
	}
	return nil
}

// InitCommand writes a commented default configuration file.
type InitCommand struct {
	*BaseCommand
	configPath string
	force      bool
}

// NewInitCommand creates a new init command writing to configPath.
func NewInitCommand(configPath string) *InitCommand {
	return &InitCommand{
		BaseCommand: NewBaseCommand(
			"init",
			"Write a default configuration file",
			"init [options]",
		),
		configPath: configPath,
	}
}

// SetupFlags configures the flags for the init command.
func (c *InitCommand) SetupFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "Overwrite an existing configuration file")
}

// Execute writes the file.
func (c *InitCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	if c.configPath == "" {
		return fmt.Errorf("no configuration path")
	}
	if _, err := os.Stat(c.configPath); err == nil && !c.force {
		_, _ = fmt.Fprintf(stdout, "Configuration already exists at: %s\n", c.configPath)
		_, _ = fmt.Fprintln(stdout, "Use -force to overwrite existing configuration")
		return nil
	}
	if err := storage.AtomicWriteFile(c.configPath, []byte(defaultConfigText()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if _, err := config.LoadFromPath(c.configPath); err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: failed to load created config: %v\n", err)
	}
	_, _ = fmt.Fprintf(stdout, "Initialized clica configuration at: %s\n", c.configPath)
	return nil
}

// defaultConfigText lists every known option, commented out at its default.
func defaultConfigText() string {
	var b strings.Builder
	b.WriteString("# clica configuration file\n")
	b.WriteString("# Format: optionName remainingLineIsTheValue\n")
	b.WriteString("# Options can also be set from the environment variables shown.\n\n")
	for _, opt := range config.DefaultSchema().GlobalOptions() {
		b.WriteString("# " + opt.Description)
		if opt.EnvVar != "" {
			b.WriteString(" ($" + opt.EnvVar + ")")
		}
		b.WriteString("\n# " + opt.Key)
		if opt.Default != "" {
			b.WriteString(" " + opt.Default)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
