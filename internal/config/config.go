// Package config loads tuisplit settings from command-line flags and
// TUISPLIT_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dshills/tuisplit/internal/renderer/layout"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "TUISPLIT"

// Config is the complete tuisplit configuration.
type Config struct {
	FirstCommand    string        `mapstructure:"first_command"`
	SecondCommand   string        `mapstructure:"second_command"`
	Shell           string        `mapstructure:"shell"`
	Layout          string        `mapstructure:"layout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	Scrollback      int           `mapstructure:"scrollback"`
	Log             LogConfig     `mapstructure:"log"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
	// Sink is file, stderr or none.
	Sink string `mapstructure:"sink"`
	// File is the log path when Sink is file. Empty selects the cache directory.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FirstCommand:    "date; hostname; uptime",
		SecondCommand:   "ps aux",
		Layout:          "vertical",
		RefreshInterval: 2 * time.Second,
		TickInterval:    50 * time.Millisecond,
		Scrollback:      1000,
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			Sink:       "file",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// SetDefaults registers every key with its default value on v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("first_command", d.FirstCommand)
	v.SetDefault("second_command", d.SecondCommand)
	v.SetDefault("shell", d.Shell)
	v.SetDefault("layout", d.Layout)
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("tick_interval", d.TickInterval)
	v.SetDefault("scrollback", d.Scrollback)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.sink", d.Log.Sink)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"first":      "first_command",
	"second":     "second_command",
	"shell":      "shell",
	"layout":     "layout",
	"refresh":    "refresh_interval",
	"tick":       "tick_interval",
	"scrollback": "scrollback",
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.file",
	"log-sink":   "log.sink",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.String("first", d.FirstCommand, "command for the first pane")
	fs.String("second", d.SecondCommand, "command for the second pane")
	fs.String("shell", d.Shell, "shell for compound commands and Ctrl+N (default $SHELL, then /bin/sh)")
	fs.String("layout", d.Layout, "initial layout: vertical or horizontal")
	fs.Duration("refresh", d.RefreshInterval, "rerun interval for refreshing panes (0 disables)")
	fs.Duration("tick", d.TickInterval, "event loop tick and redraw interval")
	fs.Int("scrollback", d.Scrollback, "scrollback rows kept per pane")
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	fs.String("log-format", d.Log.Format, "log format: text or json")
	fs.String("log-file", d.Log.File, "log file path (default in the user cache directory)")
	fs.String("log-sink", d.Log.Sink, "log destination: file, stderr or none")
}

// BindFlags binds the flags added by RegisterFlags to their keys on v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load enables environment overrides on v, decodes the configuration and
// validates it.
func Load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LayoutMode returns the parsed initial layout, defaulting to vertical.
func (c Config) LayoutMode() layout.Mode {
	mode, err := layout.ParseMode(c.Layout)
	if err != nil {
		return layout.Vertical
	}
	return mode
}

// ValidLogLevels returns the accepted log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks c and returns ValidationErrors describing every problem,
// or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if strings.TrimSpace(c.FirstCommand) == "" {
		add("first_command", c.FirstCommand, "must not be empty")
	}
	if strings.TrimSpace(c.SecondCommand) == "" {
		add("second_command", c.SecondCommand, "must not be empty")
	}
	if _, err := layout.ParseMode(c.Layout); err != nil {
		add("layout", c.Layout, "must be vertical or horizontal")
	}
	if c.RefreshInterval < 0 {
		add("refresh_interval", c.RefreshInterval, "must not be negative")
	}
	if c.TickInterval <= 0 {
		add("tick_interval", c.TickInterval, "must be positive")
	}
	if c.Scrollback < 1 || c.Scrollback > 100000 {
		add("scrollback", c.Scrollback, "must be between 1 and 100000")
	}

	if !contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		add("log.level", c.Log.Level, "must be one of debug, info, warn, error")
	}
	if !contains([]string{"text", "json"}, strings.ToLower(c.Log.Format)) {
		add("log.format", c.Log.Format, "must be text or json")
	}
	if !contains([]string{"file", "stderr", "none"}, strings.ToLower(c.Log.Sink)) {
		add("log.sink", c.Log.Sink, "must be file, stderr or none")
	}
	if c.Log.MaxSizeMB < 0 {
		add("log.max_size_mb", c.Log.MaxSizeMB, "must not be negative")
	}
	if c.Log.MaxBackups < 0 {
		add("log.max_backups", c.Log.MaxBackups, "must not be negative")
	}
	if c.Log.MaxAgeDays < 0 {
		add("log.max_age_days", c.Log.MaxAgeDays, "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// yamlConfig mirrors Config with durations rendered as strings.
type yamlConfig struct {
	FirstCommand    string  `yaml:"first_command"`
	SecondCommand   string  `yaml:"second_command"`
	Shell           string  `yaml:"shell"`
	Layout          string  `yaml:"layout"`
	RefreshInterval string  `yaml:"refresh_interval"`
	TickInterval    string  `yaml:"tick_interval"`
	Scrollback      int     `yaml:"scrollback"`
	Log             yamlLog `yaml:"log"`
}

type yamlLog struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Sink       string `yaml:"sink"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// YAML renders the configuration for display.
func (c Config) YAML() (string, error) {
	out, err := yaml.Marshal(yamlConfig{
		FirstCommand:    c.FirstCommand,
		SecondCommand:   c.SecondCommand,
		Shell:           c.Shell,
		Layout:          c.Layout,
		RefreshInterval: c.RefreshInterval.String(),
		TickInterval:    c.TickInterval.String(),
		Scrollback:      c.Scrollback,
		Log: yamlLog{
			Level:      c.Log.Level,
			Format:     c.Log.Format,
			Sink:       c.Log.Sink,
			File:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
			Compress:   c.Log.Compress,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}
