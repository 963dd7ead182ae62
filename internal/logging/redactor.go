package logging

import (
	"strings"
	"sync"
)

const redactedValue = "[REDACTED]"

// Redactor replaces the values of sensitive keys in log fields.
// Keys are matched exactly, ignoring case. A Redactor is safe for
// concurrent use.
type Redactor struct {
	mu            sync.RWMutex
	sensitiveKeys map[string]bool
}

// NewRedactor creates a Redactor that hides every SRP secret and
// credential-derived value.
func NewRedactor() *Redactor {
	return &Redactor{
		sensitiveKeys: map[string]bool{
			// Credentials
			"password":    true,
			"verifier":    true,
			"salt":        true,
			"private_key": true,
			"x":           true,

			// Ephemeral secrets
			"a":      true,
			"b":      true,
			"secret": true,

			// Derived session material
			"s":           true,
			"k":           true,
			"session_key": true,
			"proof":       true,
			"m1":          true,
			"m2":          true,
		},
	}
}

// AddSensitiveKey adds a custom key to the redaction list.
func (r *Redactor) AddSensitiveKey(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sensitiveKeys[strings.ToLower(key)] = true
}

// RemoveSensitiveKey removes a key from the redaction list.
func (r *Redactor) RemoveSensitiveKey(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sensitiveKeys, strings.ToLower(key))
}

// RedactFields returns a copy of fields with sensitive values replaced.
// Nested maps are redacted recursively.
func (r *Redactor) RedactFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.redact(fields)
}

// redact does the work of RedactFields. The caller holds r.mu.
func (r *Redactor) redact(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	redacted := make(map[string]any, len(fields))
	for k, v := range fields {
		if r.sensitiveKeys[strings.ToLower(k)] {
			redacted[k] = redactedValue
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			redacted[k] = r.redact(nested)
			continue
		}
		redacted[k] = v
	}
	return redacted
}
