// Package gs5250 implements the green-screen workflow engine: a client
// that drives a 5250 session through a declarative script of Navigate,
// Assert, and Scrape steps (spec §4.8).
package gs5250

import (
	"encoding/json"
	"fmt"
)

// Connection describes the 5250 host to dial. TLS is optional CA-pinned
// verification only (spec.md §1 Non-goals excludes a full client PKI
// model); ProxyURL is an optional SOCKS5 proxy (e.g. "socks5://host:1080")
// for dialing the host through, since some AS/400 shops only expose 5250
// through a jump host.
type Connection struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	TerminalType string `json:"terminal_type,omitempty"`
	DeviceName   string `json:"device_name,omitempty"`
	TLSEnabled   bool   `json:"tls_enabled,omitempty"`
	TLSCAFile    string `json:"tls_ca_file,omitempty"`
	ProxyURL     string `json:"proxy_url,omitempty"`
}

// RetryConfig controls re-attempts of a single step after failure.
type RetryConfig struct {
	MaxAttempts    int     `json:"max_attempts"`
	BackoffSeconds float64 `json:"backoff_seconds,omitempty"`
	Strategy       string  `json:"strategy,omitempty"` // "fixed" or "exponential" (default)
}

// StepConfig is the polymorphic step shape; Type selects which of the
// remaining fields apply.
type StepConfig struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"` // "navigate", "assert", "scrape"

	// Navigate
	Fields       map[string]string `json:"fields,omitempty"`
	AIDKey       string            `json:"aid_key,omitempty"`
	ExpectScreen string            `json:"expect_screen,omitempty"`

	// Assert
	ErrorText      string            `json:"error_text,omitempty"`
	ErrorRow       int               `json:"error_row,omitempty"`
	AssertFields   map[string]string `json:"assert_fields,omitempty"`
	AssertOperator string            `json:"assert_operator,omitempty"` // equals|contains|starts_with|ends_with

	// Scrape
	ScrapeFields []string `json:"scrape_fields,omitempty"`

	// Common
	TimeoutSeconds float64      `json:"timeout_seconds,omitempty"`
	Retry          *RetryConfig `json:"retry,omitempty"`
	OnFailure      string       `json:"on_failure,omitempty"` // fail_fast (default) | log_and_continue
}

// WorkflowConfig is the full connector configuration for one invocation.
type WorkflowConfig struct {
	Connection        Connection   `json:"connection"`
	ScreenCatalogPath string       `json:"screen_catalog_path"`
	Steps             []StepConfig `json:"steps"`
}

// DecodeConfig re-marshals a generic config blob (as delivered by
// component.Configuration.ConfigBlob) into a typed WorkflowConfig.
func DecodeConfig(blob map[string]any) (WorkflowConfig, error) {
	raw, err := json.Marshal(blob)
	if err != nil {
		return WorkflowConfig{}, fmt.Errorf("gs5250: re-marshaling config blob: %w", err)
	}
	var cfg WorkflowConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return WorkflowConfig{}, fmt.Errorf("gs5250: decoding config: %w", err)
	}
	if cfg.Connection.Host == "" || cfg.Connection.Port == 0 {
		return WorkflowConfig{}, fmt.Errorf("gs5250: connection.host and connection.port are required")
	}
	if cfg.ScreenCatalogPath == "" {
		return WorkflowConfig{}, fmt.Errorf("gs5250: screen_catalog_path is required")
	}
	return cfg, nil
}
