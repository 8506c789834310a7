package mockhost

import (
	"strings"

	"greenrun/internal/catalog"
	"greenrun/internal/datastream"
)

// Extract maps each modified field of an input record to the catalog
// field it belongs to, by position: a modified field at (row, col) matches
// an input field definition at (fieldRow, fieldCol) when row == fieldRow
// and col is either fieldCol (the attribute byte) or fieldCol+1 (the first
// data column) — spec §4.9 "Field extractor". Unmatched modified fields
// are dropped; matched values are trimmed of trailing padding.
func Extract(def *catalog.ScreenDefinition, modified []datastream.ModifiedField) map[string]string {
	out := make(map[string]string)
	for _, mf := range modified {
		for _, fd := range def.Fields {
			if !fd.IsInput() {
				continue
			}
			if mf.Row != fd.Row {
				continue
			}
			if mf.Col != fd.Col && mf.Col != fd.Col+1 {
				continue
			}
			out[fd.Name] = strings.TrimRight(mf.Value, " ")
			break
		}
	}
	return out
}
