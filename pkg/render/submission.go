package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is an extra input emitted inside the builder's main form, such
// as a CSRF token expected by the host application.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token. The input
// name must match what the host middleware expects ("_csrf", "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields returns a copy of base with fields applied. Blank names
// are dropped and later fields win on collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders hidden fields by name so renders stay stable.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	clean := MergeHiddenFields(fields)
	if len(clean) == 0 {
		return nil
	}
	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}
