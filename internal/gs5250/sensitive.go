package gs5250

import "greenrun/internal/textutil"

// isSensitiveKey reports whether key should never have its value logged
// (spec §4.8 "sensitive-field suppression").
func isSensitiveKey(key string) bool { return textutil.IsSensitiveKey(key) }

// redactFields returns a copy of fields with sensitive values replaced,
// suitable for inclusion in a log message or error detail.
func redactFields(fields map[string]string) map[string]string { return textutil.RedactFields(fields) }
