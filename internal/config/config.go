// Package config loads the clica configuration file.
//
// The file uses a dnsmasq-style format: one "optionName value" per line,
// '#' comments, and optional [section] headers for command-specific options.
package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config is a parsed configuration file.
type Config struct {
	// Global options, outside any section.
	Global map[string]string
	// Commands holds options from [section] blocks, keyed by section.
	Commands map[string]map[string]string
	// Warnings collects unknown options and type mismatches.
	Warnings []string
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{
		Global:   make(map[string]string),
		Commands: make(map[string]map[string]string),
	}
}

// Load loads the configuration from GetConfigPath.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath loads the configuration at path. A missing file is an empty
// configuration. Symlinked config files are rejected.
func LoadFromPath(path string) (*Config, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlink not allowed in config path: %s", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return LoadFromReader(file)
}

// LoadFromReader parses a configuration and validates it against
// DefaultSchema. Validation problems become warnings, not errors.
func LoadFromReader(r io.Reader) (*Config, error) {
	config := NewConfig()
	scanner := bufio.NewScanner(r)
	var section string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(strings.Trim(line, "[]"))
			if section != "" && config.Commands[section] == nil {
				config.Commands[section] = make(map[string]string)
			}
			continue
		}
		name, value, _ := strings.Cut(line, " ")
		value = strings.TrimSpace(value)
		if section == "" {
			config.Global[name] = value
		} else {
			config.Commands[section][name] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	for _, issue := range ValidateConfig(config, DefaultSchema()) {
		config.addWarning("%s", issue)
	}
	return config, nil
}

func (c *Config) addWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, msg)
	slog.Warn("[Config] " + msg)
}

// parseBool accepts true/false, 1/0, yes/no and on/off, in any case.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", s)
	}
}

// GetGlobalOption returns a global option.
func (c *Config) GetGlobalOption(name string) (string, bool) {
	value, ok := c.Global[name]
	return value, ok
}

// GetCommandOption returns an option from the command's section, falling
// back to the global option.
func (c *Config) GetCommandOption(command, name string) (string, bool) {
	if opts, ok := c.Commands[command]; ok {
		if value, ok := opts[name]; ok {
			return value, true
		}
	}
	return c.GetGlobalOption(name)
}

// SetGlobalOption sets a global option in memory.
func (c *Config) SetGlobalOption(name, value string) {
	c.Global[name] = value
}
