// pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds cget configuration
type Config struct {
	Prefix      string   `yaml:"prefix"`
	BuildPath   string   `yaml:"build_path"`
	Verbose     bool     `yaml:"verbose"`
	UseSymlinks *bool    `yaml:"use_symlinks"` // nil means probe at startup
	RecipeDirs  []string `yaml:"recipe_dirs"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Prefix: getDefaultPrefix(),
	}
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".config", "cget", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = getDefaultPrefix()
	}

	return &cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "cget", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getDefaultPrefix resolves the prefix used when neither flag nor
// config file names one. CGET_PREFIX wins, then ./cget in the working
// directory, matching the conventional layout.
func getDefaultPrefix() string {
	if p := os.Getenv("CGET_PREFIX"); p != "" {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		return "cget"
	}
	return filepath.Join(wd, "cget")
}
