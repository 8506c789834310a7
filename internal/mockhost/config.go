// Package mockhost implements the server-side mirror of the TN5250
// protocol stack: a fluent data-stream writer, a catalog-driven screen
// renderer, a field extractor, a transition-rule evaluator, and the
// per-connection session plus accept loop that ties them together (spec
// §4.9-§4.11).
package mockhost

import (
	"encoding/json"
	"fmt"
	"os"
)

// Credential is one valid sign-on pair for the "credentials" validation
// hook (spec §4.10).
type Credential struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// TransitionRule is one entry of the navigation config's transition table
// (spec §3 "Transition rule", §6 "Navigation config").
type TransitionRule struct {
	SourceScreen  string            `json:"source_screen"`
	AIDKey        string            `json:"aid_key"`
	Conditions    map[string]string `json:"conditions,omitempty"`
	TargetScreen  string            `json:"target_screen"`
	Validation    string            `json:"validation,omitempty"` // "credentials" | "loan_exists"
	ErrorMessage  string            `json:"error_message,omitempty"`
	SetData       map[string]string `json:"set_data,omitempty"`
}

// NavigationConfig is the server's full navigation table: the initial
// screen, the valid credential list, and every transition rule.
type NavigationConfig struct {
	InitialScreen string           `json:"initial_screen"`
	Credentials   []Credential     `json:"credentials"`
	Transitions   []TransitionRule `json:"transitions"`
}

// LoadNavigationConfig reads a navigation config JSON file (spec §6).
func LoadNavigationConfig(path string) (*NavigationConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mockhost: reading navigation config %s: %w", path, err)
	}
	var cfg NavigationConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("mockhost: parsing navigation config %s: %w", path, err)
	}
	return &cfg, nil
}

// DataStore is the generic read-only test-data store the "loan_exists"
// validation hook consults (spec §6 "Test data store"). Entries are keyed
// by a primary key field (e.g. "loan_number"); each entry is itself a flat
// string map so the store can hold any screen's canonical field set
// without a bespoke struct per record type.
type DataStore struct {
	Tables map[string][]map[string]string
}

// LoadDataStore reads a test data store JSON file shaped
// {"loans": [{...}], "<table>": [{...}]}.
func LoadDataStore(path string) (*DataStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mockhost: reading data store %s: %w", path, err)
	}
	var tables map[string][]map[string]any
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("mockhost: parsing data store %s: %w", path, err)
	}
	ds := &DataStore{Tables: make(map[string][]map[string]string, len(tables))}
	for table, rows := range tables {
		converted := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			flat := make(map[string]string, len(row))
			for k, v := range row {
				flat[k] = fmt.Sprintf("%v", v)
			}
			converted = append(converted, flat)
		}
		ds.Tables[table] = converted
	}
	return ds, nil
}

// Lookup finds the first row in table whose keyField equals value.
func (ds *DataStore) Lookup(table, keyField, value string) (map[string]string, bool) {
	if ds == nil {
		return nil, false
	}
	for _, row := range ds.Tables[table] {
		if row[keyField] == value {
			return row, true
		}
	}
	return nil, false
}
