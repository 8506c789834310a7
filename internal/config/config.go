// Package config holds greenrun's process-wide configuration: connection
// defaults, catalog/navigation paths, and orchestrator retry/timeout
// defaults. It follows the teacher's YAML-backed Config/DefaultConfig/Load
// shape (SPEC_FULL.md §3 "Ambient stack").
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"greenrun/internal/logging"
)

// ConnectionConfig holds the default 5250 host connection settings.
type ConnectionConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	TerminalType string `yaml:"terminal_type"`
	DeviceName   string `yaml:"device_name"`
	TLSEnabled   bool   `yaml:"tls_enabled"`
	TLSCAFile    string `yaml:"tls_ca_file"`
}

// MockHostConfig holds the in-tree mock TN5250 server's defaults.
type MockHostConfig struct {
	BindAddress        string `yaml:"bind_address"`
	Port               int    `yaml:"port"`
	ScreenCatalogPath  string `yaml:"screen_catalog_path"`
	NavigationConfig   string `yaml:"navigation_config_path"`
	DataStorePath      string `yaml:"data_store_path"`
}

// OrchestratorConfig holds defaults applied to a step when the workflow
// file itself leaves a setting unspecified.
type OrchestratorConfig struct {
	DefaultTimeoutSeconds float64 `yaml:"default_timeout_seconds"`
	DefaultMaxAttempts    int     `yaml:"default_max_attempts"`
	DefaultBackoffSeconds float64 `yaml:"default_backoff_seconds"`
}

// LoggingConfig drives internal/logging.Initialize.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// Config is the root configuration object for the greenrun CLI.
type Config struct {
	Connection   ConnectionConfig   `yaml:"connection"`
	MockHost     MockHostConfig     `yaml:"mock_host"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// DefaultConfig returns greenrun's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Host:         "127.0.0.1",
			Port:         5250,
			TerminalType: "IBM-3179-2",
		},
		MockHost: MockHostConfig{
			BindAddress: "127.0.0.1",
			Port:        5250,
		},
		Orchestrator: OrchestratorConfig{
			DefaultTimeoutSeconds: 15,
			DefaultMaxAttempts:    1,
			DefaultBackoffSeconds: 0.5,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads a YAML config file at path, merging it over DefaultConfig. A
// missing file is not an error; Load returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: creating directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// InitLogging wires this config's Logging section into internal/logging.
func (c *Config) InitLogging(workspace string) {
	if err := logging.Initialize(workspace, c.Logging.DebugMode, c.Logging.Categories, c.Logging.Level, c.Logging.JSONFormat); err != nil {
		fmt.Fprintf(os.Stderr, "config: logging init failed: %v\n", err)
	}
}
