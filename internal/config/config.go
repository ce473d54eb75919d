package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/appver/internal/archive"
	"github.com/indaco/appver/internal/extract/ipa"
	"github.com/indaco/appver/internal/output"
)

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = ".appver.yaml"

// EnvConfigPath names the environment variable that points to another config file.
const EnvConfigPath = "APPVER_CONFIG"

// Config is the main configuration structure for appver.
type Config struct {
	// Format is the output format: text, json, yaml or toml.
	Format string `yaml:"format,omitempty"`

	// VersionCode is the CFBundleVersion coercion policy: prefix or strict.
	VersionCode string `yaml:"version-code,omitempty"`

	// MaxEntrySize caps the bytes read from Info.plist.
	MaxEntrySize int64 `yaml:"max-entry-size,omitempty"`

	// Verbose logs why a package yields no result to stderr.
	Verbose bool `yaml:"verbose,omitempty"`

	// NoColor disables styled output even on a terminal.
	NoColor bool `yaml:"no-color,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Format:       output.FormatText.String(),
		VersionCode:  ipa.PolicyPrefix.String(),
		MaxEntrySize: archive.DefaultMaxEntrySize,
	}
}

// Validate rejects unknown enum values and negative sizes.
func (c *Config) Validate() error {
	if !output.Format(c.Format).IsValid() {
		return fmt.Errorf("invalid format %q: must be one of text, json, yaml, toml", c.Format)
	}
	if !ipa.Policy(c.VersionCode).IsValid() {
		return fmt.Errorf("invalid version-code %q: must be prefix or strict", c.VersionCode)
	}
	if c.MaxEntrySize < 0 {
		return fmt.Errorf("invalid max-entry-size %d: must not be negative", c.MaxEntrySize)
	}
	return nil
}

// Policy returns the configured coercion policy.
func (c *Config) Policy() ipa.Policy {
	return ipa.ParsePolicy(c.VersionCode)
}

// OutputFormat returns the configured output format.
func (c *Config) OutputFormat() output.Format {
	return output.ParseFormat(c.Format)
}

// LoadConfigFn is swapped in tests.
var LoadConfigFn = loadConfig

func loadConfig() (*Config, error) {
	path := DefaultConfigFile
	explicit := false

	// Highest priority: ENV variable
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		cleanPath := filepath.Clean(envPath)
		// Reject relative paths with traversal (use absolute paths instead)
		if !filepath.IsAbs(cleanPath) && strings.Contains(cleanPath, "..") {
			return nil, fmt.Errorf("invalid %s: path traversal not allowed, use absolute path instead", EnvConfigPath)
		}
		path = cleanPath
		explicit = true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	if cfg.Format == "" {
		cfg.Format = output.FormatText.String()
	}
	if cfg.VersionCode == "" {
		cfg.VersionCode = ipa.PolicyPrefix.String()
	}
	if cfg.MaxEntrySize == 0 {
		cfg.MaxEntrySize = archive.DefaultMaxEntrySize
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}
