// Package textutil implements the shared string utilities used across the
// green-screen workflow engine and the orchestrator: {{key}} placeholder
// substitution and a currency/parenthesis-aware numeric parser (spec §4.13
// "Shared utilities").
package textutil

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ResolvePlaceholders replaces every {{key}} occurrence in s with the
// matching value from values. A placeholder whose key is absent from
// values is left verbatim (the downstream host sees the literal braces) —
// this is intentional, not a bug, so tests can assert on unresolved
// placeholders surviving (spec §4.8, §8).
func ResolvePlaceholders(s string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := match[2 : len(match)-2]
		if v, ok := values[key]; ok {
			return v
		}
		return match
	})
}

// ResolvePlaceholdersFunc is the lookup-function variant of
// ResolvePlaceholders, for callers backed by something other than a plain
// map (e.g. a dict.Dict snapshot already flattened to a map, or a layered
// lookup).
func ResolvePlaceholdersFunc(s string, lookup func(key string) (string, bool)) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := match[2 : len(match)-2]
		if v, ok := lookup(key); ok {
			return v
		}
		return match
	})
}

// PlaceholderKeys returns every distinct key referenced by {{key}} in s, in
// first-occurrence order.
func PlaceholderKeys(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	seen := make(map[string]bool, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}
