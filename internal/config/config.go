package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults loaded from cosetool.yaml. The root command
// loads it and GetConfig returns it; no subcommand reads its fields, so
// every command takes its algorithm, kid and tag behaviour from its flags.
type Config struct {
	DefaultAlgorithm string `yaml:"default_algorithm"`
	DefaultKid       string `yaml:"default_kid"`
	TagMode          string `yaml:"tag_mode"` // "required", "forbidden", or "" (either)
}

// DefaultConfig returns the built-in defaults used when no config file is
// found.
func DefaultConfig() *Config {
	return &Config{
		DefaultAlgorithm: "ES256",
		TagMode:          "",
	}
}

// LoadConfig reads and validates a YAML config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks that cfg's fields hold recognized values.
func (c *Config) Validate() error {
	switch c.DefaultAlgorithm {
	case "ES256", "ES384", "ES512", "EdDSA", "PS256", "PS384", "PS512", "":
	default:
		return fmt.Errorf("unrecognized default_algorithm %q", c.DefaultAlgorithm)
	}
	switch c.TagMode {
	case "required", "forbidden", "":
	default:
		return fmt.Errorf("unrecognized tag_mode %q", c.TagMode)
	}
	return nil
}
