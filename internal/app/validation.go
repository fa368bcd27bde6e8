package app

import (
	"maps"
	"slices"
	"strings"
)

// FieldErrors maps a form field key to its inline validation message.
type FieldErrors map[string]string

// Error joins every message in stable field order.
func (e FieldErrors) Error() string {
	keys := slices.Sorted(maps.Keys(e))
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for one field, or "" when it passed.
func (e FieldErrors) Field(name string) string {
	if e == nil {
		return ""
	}
	return e[name]
}
