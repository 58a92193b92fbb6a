package model

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SectionLabel returns the auto-generated label for the n-th section (1-based).
func SectionLabel(n int) string {
	return fmt.Sprintf("Section %d", n)
}

// DefaultFieldLabel derives a label from the type name, e.g. "Text Field".
func DefaultFieldLabel(t FieldType) string {
	return capitalize(string(t)) + " Field"
}

func capitalize(value string) string {
	if value == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(r)) + value[size:]
}

// ToolbarLabel returns the builder button caption for a field type.
func ToolbarLabel(t FieldType) string {
	switch t {
	case FieldTypeText:
		return "Add Text Field"
	case FieldTypeDropdown:
		return "Add Dropdown"
	case FieldTypeRadio:
		return "Add Radio Button"
	case FieldTypeFile:
		return "Add File Upload"
	case FieldTypeCheckbox:
		return "Add Checkbox"
	case FieldTypeCountry:
		return "Add Country"
	case FieldTypeDate:
		return "Add Date Picker"
	case FieldTypePhone:
		return "Add Phone Number"
	default:
		return "Add " + strings.TrimSpace(capitalize(string(t)))
	}
}
