// Package config handles the configuration of the command-line tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all tool settings.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig holds the settings of written PMX files.
type OutputConfig struct {
	// Encoding is the text encoding of written files, "utf16" or "utf8".
	Encoding string `yaml:"encoding"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Encoding: "utf16",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// UTF16 returns whether written files use UTF-16LE text.
func (c *Config) UTF16() bool {
	return c.Output.Encoding != "utf8"
}

// Validate checks that every setting has a recognized value.
func (c *Config) Validate() error {
	switch c.Output.Encoding {
	case "utf16", "utf8":
	default:
		return fmt.Errorf("output.encoding: unknown encoding %q", c.Output.Encoding)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

// LoadFile returns the defaults overridden by the YAML file at path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
