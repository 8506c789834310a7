// Package catalog loads screen definitions used to identify and render
// 5250 screens, and matches a live screen buffer against them (spec §4.7).
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"greenrun/internal/screen"
	"greenrun/internal/wire"
)

// Identifier is the anchor text used to recognize a screen.
type Identifier struct {
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	ExpectedText string `json:"expected_text"`
}

// FieldDefinition describes one named field on a screen.
type FieldDefinition struct {
	Name         string `json:"name"`
	Type         string `json:"type"` // "input" or "display"
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	Length       int    `json:"length"`
	Attributes   []string `json:"attributes,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// IsInput reports whether this field accepts operator input.
func (f FieldDefinition) IsInput() bool { return f.Type == "input" }

// StaticTextDefinition is a literal label the renderer writes verbatim.
type StaticTextDefinition struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Text string `json:"text"`
}

// ScreenDefinition is one catalog entry.
type ScreenDefinition struct {
	ID         string                 `json:"screen_id"`
	Identifier Identifier             `json:"identifier"`
	Fields     []FieldDefinition      `json:"fields"`
	StaticText []StaticTextDefinition `json:"static_text,omitempty"`
}

// Field looks up a named field definition on this screen.
func (s *ScreenDefinition) Field(name string) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Catalog is an ordered, read-only set of screen definitions. Order is
// load order, which determines precedence when more than one entry could
// match a buffer (spec §4.7 only promises "the first matching entry").
type Catalog struct {
	screens []*ScreenDefinition
	byID    map[string]*ScreenDefinition
}

// Load reads a catalog from path, which may be a single JSON file (holding
// either one screen object or an array of them) or a directory of
// single-screen JSON files. Duplicate screen IDs are a fatal load error.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	var defs []*ScreenDefinition
	if info.IsDir() {
		defs, err = loadDir(path)
	} else {
		defs, err = loadFile(path)
	}
	if err != nil {
		return nil, err
	}

	c := &Catalog{byID: make(map[string]*ScreenDefinition, len(defs))}
	for _, d := range defs {
		if err := validate(d); err != nil {
			return nil, fmt.Errorf("catalog: screen %q: %w", d.ID, err)
		}
		if _, exists := c.byID[d.ID]; exists {
			return nil, fmt.Errorf("catalog: duplicate screen id %q", d.ID)
		}
		c.byID[d.ID] = d
		c.screens = append(c.screens, d)
	}
	return c, nil
}

func loadDir(dir string) ([]*ScreenDefinition, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	sort.Strings(matches)

	defs := make([]*ScreenDefinition, 0, len(matches))
	for _, m := range matches {
		raw, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("catalog: reading %s: %w", m, err)
		}
		var d ScreenDefinition
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("catalog: parsing %s: %w", m, err)
		}
		defs = append(defs, &d)
	}
	return defs, nil
}

func loadFile(path string) ([]*ScreenDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var defs []*ScreenDefinition
		if err := json.Unmarshal(raw, &defs); err != nil {
			return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
		}
		return defs, nil
	}

	var d ScreenDefinition
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", path, err)
	}
	return []*ScreenDefinition{&d}, nil
}

func validate(d *ScreenDefinition) error {
	if d.ID == "" {
		return fmt.Errorf("missing screen_id")
	}
	if err := validatePosition(d.Identifier.Row, d.Identifier.Col, len(d.Identifier.ExpectedText)); err != nil {
		return fmt.Errorf("identifier: %w", err)
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if err := validatePosition(f.Row, f.Col, f.Length); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	for _, st := range d.StaticText {
		if err := validatePosition(st.Row, st.Col, len(st.Text)); err != nil {
			return fmt.Errorf("static text at (%d,%d): %w", st.Row, st.Col, err)
		}
	}
	return nil
}

func validatePosition(row, col, length int) error {
	if row < 1 || row > wire.ScreenRows || col < 1 || col > wire.ScreenCols {
		return fmt.Errorf("position (%d,%d) out of range", row, col)
	}
	if length > 0 && col+length-1 > wire.ScreenCols {
		return fmt.Errorf("content of length %d at column %d runs past column %d", length, col, wire.ScreenCols)
	}
	return nil
}

// Get returns the screen definition with the given id.
func (c *Catalog) Get(id string) (*ScreenDefinition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Screens returns all screen definitions in load order.
func (c *Catalog) Screens() []*ScreenDefinition {
	return append([]*ScreenDefinition(nil), c.screens...)
}

// Identify returns the first catalog entry whose identifier anchor text
// matches the current buffer contents, or false if none match.
func Identify(c *Catalog, buf *screen.Buffer) (*ScreenDefinition, bool) {
	for _, d := range c.screens {
		want := strings.ToLower(strings.TrimRight(d.Identifier.ExpectedText, " "))
		got := strings.ToLower(strings.TrimRight(
			buf.ReadText(d.Identifier.Row, d.Identifier.Col, len(d.Identifier.ExpectedText)), " "))
		if want == got {
			return d, true
		}
	}
	return nil, false
}

// IsScreen reports whether buf currently identifies as the screen with id.
func IsScreen(c *Catalog, buf *screen.Buffer, id string) bool {
	d, ok := Identify(c, buf)
	return ok && d.ID == id
}
