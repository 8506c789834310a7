package textutil

import "strings"

// sensitiveKeyFragments is the case-insensitive denylist that must never
// surface in a log message or error detail: password/credential fields
// crossing the data dictionary (spec §4.8 "Sensitive-field suppression",
// §4.10 "sensitive fields never appear in dataUpdates").
var sensitiveKeyFragments = []string{"password", "passcode", "pin"}

// IsSensitiveKey reports whether key should never have its value logged or
// echoed back in a dataUpdates map.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, frag := range sensitiveKeyFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// RedactFields returns a copy of fields with every sensitive value
// replaced by a fixed marker, suitable for inclusion in a log message.
func RedactFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if IsSensitiveKey(k) {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

// WithoutSensitive returns a copy of fields with every sensitive key
// dropped entirely, used where a denylisted value must never appear at
// all (spec §4.10 dataUpdates).
func WithoutSensitive(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if IsSensitiveKey(k) {
			continue
		}
		out[k] = v
	}
	return out
}
