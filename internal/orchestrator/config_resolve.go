package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"

	"greenrun/internal/textutil"
)

// decodeComponentConfig turns a step's raw component_config into the
// already-decoded map every component consumes. The raw value is either an
// inline JSON object or a JSON string naming a file that holds the object
// (spec §6 "component_config (path or inline)").
func decodeComponentConfig(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading component_config file %s: %w", path, err)
		}
		var blob map[string]any
		if err := json.Unmarshal(data, &blob); err != nil {
			return nil, fmt.Errorf("parsing component_config file %s: %w", path, err)
		}
		return blob, nil
	}

	var blob map[string]any
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("component_config must be an object or a path string: %w", err)
	}
	return blob, nil
}

// resolveConfig walks blob recursively, replacing every {{key}} occurrence
// in string values with snapshot's values (spec §4.13 "Placeholder
// substitution"). Map keys and non-string leaves pass through unchanged.
func resolveConfig(blob map[string]any, snapshot map[string]string) map[string]any {
	if blob == nil {
		return nil
	}
	out := make(map[string]any, len(blob))
	for k, v := range blob {
		out[k] = resolveValue(v, snapshot)
	}
	return out
}

func resolveValue(v any, snapshot map[string]string) any {
	switch val := v.(type) {
	case string:
		return textutil.ResolvePlaceholders(val, snapshot)
	case map[string]any:
		return resolveConfig(val, snapshot)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = resolveValue(item, snapshot)
		}
		return out
	default:
		return v
	}
}
