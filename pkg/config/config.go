// Package config loads the kernel's runtime configuration and turns it into
// capability implementations.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// YAML file named by LEDGER_CONFIG, and individual environment variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flyingrobots/ledger-kernel/pkg/digest"
	"github.com/flyingrobots/ledger-kernel/pkg/docio"
	"github.com/flyingrobots/ledger-kernel/pkg/schema"
)

// Environment variables.
const (
	EnvConfigFile       = "LEDGER_CONFIG"
	EnvHash             = "LEDGER_HASH"
	EnvSchemaValidation = "LEDGER_SCHEMA_VALIDATION"
	EnvSchemaPath       = "LEDGER_SCHEMA_PATH"
	EnvLogLevel         = "LEDGER_LOG_LEVEL"
	envLogLevelFallback = "LOG_LEVEL"
)

// Capability settings.
const (
	HashBlake3 = "blake3"
	HashNone   = "none"

	SchemaEnabled  = "enabled"
	SchemaDisabled = "disabled"
)

// DefaultSchemaPath is the compliance report schema used by lint when no
// other path is configured.
const DefaultSchemaPath = "schemas/compliance_report.schema.json"

// Config holds kernel configuration.
type Config struct {
	Hash             string `yaml:"hash"`
	SchemaValidation string `yaml:"schema_validation"`
	SchemaPath       string `yaml:"schema_path"`
	LogLevel         string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Hash:             HashBlake3,
		SchemaValidation: SchemaEnabled,
		SchemaPath:       DefaultSchemaPath,
		LogLevel:         "WARN",
	}
}

// Load loads configuration from the environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvHash); v != "" {
		cfg.Hash = v
	}
	if v := os.Getenv(EnvSchemaValidation); v != "" {
		cfg.SchemaValidation = v
	}
	if v := os.Getenv(EnvSchemaPath); v != "" {
		cfg.SchemaPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	} else if v := os.Getenv(envLogLevelFallback); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := docio.ReadFile(docio.KindConfig, path)
	if err != nil {
		return err
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if file.Hash != "" {
		c.Hash = file.Hash
	}
	if file.SchemaValidation != "" {
		c.SchemaValidation = file.SchemaValidation
	}
	if file.SchemaPath != "" {
		c.SchemaPath = file.SchemaPath
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	return nil
}

// Validate rejects unknown settings.
func (c *Config) Validate() error {
	c.Hash = strings.ToLower(strings.TrimSpace(c.Hash))
	c.SchemaValidation = strings.ToLower(strings.TrimSpace(c.SchemaValidation))

	switch c.Hash {
	case HashBlake3, HashNone:
	default:
		return fmt.Errorf("config: hash must be %q or %q, got %q", HashBlake3, HashNone, c.Hash)
	}
	switch c.SchemaValidation {
	case SchemaEnabled, SchemaDisabled:
	default:
		return fmt.Errorf("config: schema_validation must be %q or %q, got %q", SchemaEnabled, SchemaDisabled, c.SchemaValidation)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Capabilities are the implementations selected by a Config.
type Capabilities struct {
	Hasher    digest.Hasher
	Validator schema.Validator
}

// Capabilities builds the hash and schema validation capabilities.
func (c *Config) Capabilities() Capabilities {
	caps := Capabilities{
		Hasher:    digest.Blake3(),
		Validator: schema.NewJSONSchema(),
	}
	if c.Hash == HashNone {
		caps.Hasher = digest.Unavailable("disabled by " + EnvHash)
	}
	if c.SchemaValidation == SchemaDisabled {
		caps.Validator = schema.Unavailable("disabled by " + EnvSchemaValidation)
	}
	return caps
}

// ParseLevel parses a log level name such as "debug" or "WARN".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", s)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
