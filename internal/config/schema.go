package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joeycumines/clica/internal/argv"
)

// OptionType is the expected type of an option value.
type OptionType string

const (
	TypeString   OptionType = "string"
	TypeBool     OptionType = "bool"
	TypeInt      OptionType = "int"
	TypeDuration OptionType = "duration"
	// TypeCommand is a command line with POSIX shell quoting.
	TypeCommand OptionType = "command"
)

// ConfigOption declares one option.
type ConfigOption struct {
	// Key is the option name as written in the file.
	Key         string
	Type        OptionType
	Default     string
	Description string
	// Section is "" for global options.
	Section string
	// EnvVar overrides the file value when set, even to "".
	EnvVar string
}

// ConfigSchema is the set of known options, used for validation, help text
// and env var mapping.
type ConfigSchema struct {
	options   []*ConfigOption
	byKey     map[string]*ConfigOption
	bySection map[string]map[string]*ConfigOption
}

// NewSchema creates an empty schema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{
		byKey:     make(map[string]*ConfigOption),
		bySection: make(map[string]map[string]*ConfigOption),
	}
}

// Register adds an option; the last registration of a key wins.
func (s *ConfigSchema) Register(opt ConfigOption) {
	ref := &opt
	s.options = append(s.options, ref)
	if opt.Section == "" {
		s.byKey[opt.Key] = ref
		return
	}
	if s.bySection[opt.Section] == nil {
		s.bySection[opt.Section] = make(map[string]*ConfigOption)
	}
	s.bySection[opt.Section][opt.Key] = ref
}

// RegisterAll registers each of opts.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, opt := range opts {
		s.Register(opt)
	}
}

// Lookup returns the option for key in section ("" for global), or nil.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if section == "" {
		return s.byKey[key]
	}
	return s.bySection[section][key]
}

// IsKnown reports whether key may appear in section. Global keys are valid in
// every section.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	return s.Lookup(section, key) != nil || s.byKey[key] != nil
}

// GlobalOptions returns the global options in registration order.
func (s *ConfigSchema) GlobalOptions() []ConfigOption {
	return s.SectionOptions("")
}

// SectionOptions returns the options of one section in registration order.
func (s *ConfigSchema) SectionOptions(section string) []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, *o)
		}
	}
	return out
}

// Sections returns the sorted non-global section names.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.bySection))
	for sec := range s.bySection {
		out = append(out, sec)
	}
	slices.Sort(out)
	return out
}

// Resolve returns the effective value of a global key: the declared env var,
// then the file, then the schema default.
func (s *ConfigSchema) Resolve(c *Config, key string) string {
	opt := s.Lookup("", key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if v, ok := c.GetGlobalOption(key); ok {
		return v
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ResolveBool resolves key as a bool.
func (s *ConfigSchema) ResolveBool(c *Config, key string) (bool, error) {
	v := s.Resolve(c, key)
	if v == "" {
		return false, nil
	}
	b, err := parseBool(v)
	if err != nil {
		return false, fmt.Errorf("option %s: %w", key, err)
	}
	return b, nil
}

// ResolveInt resolves key as an int.
func (s *ConfigSchema) ResolveInt(c *Config, key string) (int, error) {
	v := s.Resolve(c, key)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("option %s: expected int, got %q", key, v)
	}
	return i, nil
}

// ResolveDuration resolves key as a time.Duration.
func (s *ConfigSchema) ResolveDuration(c *Config, key string) (time.Duration, error) {
	v := s.Resolve(c, key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("option %s: expected duration, got %q", key, v)
	}
	return d, nil
}

// ValidateConfig returns sorted, human-readable problems with c: unknown
// options and values that do not match their declared type.
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string
	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := validateType(opt.Type, value); err != nil {
			issues = append(issues, fmt.Sprintf("global option %q: %v", key, err))
		}
	}
	for section, opts := range c.Commands {
		for key, value := range opts {
			if !s.IsKnown(section, key) {
				issues = append(issues, fmt.Sprintf("unknown option for command %q: %q (value: %q)", section, key, value))
				continue
			}
			opt := s.Lookup(section, key)
			if opt == nil {
				opt = s.Lookup("", key)
			}
			if err := validateType(opt.Type, value); err != nil {
				issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
			}
		}
	}
	slices.Sort(issues)
	return issues
}

func validateType(t OptionType, value string) error {
	switch t {
	case TypeString, "":
		return nil
	case TypeCommand:
		if _, err := argv.Split(value); err != nil {
			return fmt.Errorf("invalid command line %q: %w", value, err)
		}
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	case TypeDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("expected duration, got %q", value)
		}
	default:
		return fmt.Errorf("unknown option type %q", t)
	}
	return nil
}

// FormatHelp renders every option, grouped by section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder
	if globals := s.GlobalOptions(); len(globals) > 0 {
		b.WriteString("Global Options:\n")
		for _, o := range globals {
			writeOptionHelp(&b, o)
		}
	}
	for _, sec := range s.Sections() {
		fmt.Fprintf(&b, "\n[%s] Options:\n", sec)
		for _, o := range s.SectionOptions(sec) {
			writeOptionHelp(&b, o)
		}
	}
	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "  %-24s %s", o.Key, o.Description)
	parts := make([]string, 0, 3)
	if o.Type != "" && o.Type != TypeString {
		parts = append(parts, "type: "+string(o.Type))
	}
	if o.Default != "" {
		parts = append(parts, "default: "+o.Default)
	}
	if o.EnvVar != "" {
		parts = append(parts, "env: "+o.EnvVar)
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// Option keys.
const (
	KeyModelSaveDir     = "model.save-dir"
	KeyModelAutoload    = "model.autoload"
	KeyModelLastLoaded  = "model.last-loaded"
	KeyEvalDataPath     = "eval.data-path"
	KeyMaxGenLength     = "agent.max-gen-length"
	KeyRewardInitial    = "reward.initial"
	KeyProblemsFile     = "problems.file"
	KeyRunCommand       = "workspace.run-command"
	KeyRunTimeout       = "workspace.run-timeout"
	KeyActionLogBackend = "actionlog.backend"
	KeyActionLogPath    = "actionlog.path"
	KeySessionBackend   = "session.backend"
	KeySessionID        = "session.id"
	KeyLogFile          = "log.file"
	KeyLogLevel         = "log.level"
	KeyLogMaxSizeMB     = "log.max-size-mb"
	KeyLogMaxFiles      = "log.max-files"
	KeyLogBufferSize    = "log.buffer-size"
)

// DefaultSchema returns every option clica understands.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll([]ConfigOption{
		{Key: KeyModelSaveDir, Description: "Directory holding saved models", EnvVar: "CLICA_MODEL_DIR"},
		{Key: KeyModelAutoload, Type: TypeBool, Description: "Load the last loaded model at startup"},
		{Key: KeyModelLastLoaded, Description: "Name of the last saved or loaded model"},
		{Key: KeyEvalDataPath, Description: "Directory of evaluation items", EnvVar: "CLICA_EVAL_DIR"},
		{Key: KeyMaxGenLength, Type: TypeInt, Default: "64", Description: "Maximum agent actions per turn"},
		{Key: KeyRewardInitial, Type: TypeInt, Default: "0", Description: "Reward value for new sessions"},
		{Key: KeyProblemsFile, Description: "YAML problem bank for example prompts"},
		{Key: KeyRunCommand, Type: TypeCommand, Description: "Command that runs the workspace code on stdin"},
		{Key: KeyRunTimeout, Type: TypeDuration, Default: "10s", Description: "Time limit for one run"},
		{Key: KeyActionLogBackend, Default: "sqlite", Description: "Action log backend (sqlite, memory)"},
		{Key: KeyActionLogPath, Description: "Action log database path"},
		{Key: KeySessionBackend, Default: "fs", Description: "Session backend (fs, memory)"},
		{Key: KeySessionID, Description: "Explicit session id", EnvVar: "CLICA_SESSION_ID"},
		{Key: KeyLogFile, Description: "JSON log file path", EnvVar: "CLICA_LOG_FILE"},
		{Key: KeyLogLevel, Default: "info", Description: "Log level (debug, info, warn, error)", EnvVar: "CLICA_LOG_LEVEL"},
		{Key: KeyLogMaxSizeMB, Type: TypeInt, Default: "10", Description: "Rotate the log file at this size"},
		{Key: KeyLogMaxFiles, Type: TypeInt, Default: "5", Description: "Rotated log files to keep"},
		{Key: KeyLogBufferSize, Type: TypeInt, Default: "200", Description: "In-memory log entries kept"},
	})
	return s
}
