package model

import (
	"fmt"
	"strings"
	"time"
)

// FieldType enumerates the closed set of field kinds a section can hold.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeFile     FieldType = "file"
	FieldTypeCountry  FieldType = "country"
	FieldTypeDate     FieldType = "date"
	FieldTypePhone    FieldType = "phone"
)

// FieldTypes lists every supported field type in toolbar order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeDropdown,
		FieldTypeRadio,
		FieldTypeFile,
		FieldTypeCheckbox,
		FieldTypeCountry,
		FieldTypeDate,
		FieldTypePhone,
	}
}

// ParseFieldType resolves a type name, rejecting anything outside the closed set.
func ParseFieldType(raw string) (FieldType, error) {
	candidate := FieldType(strings.ToLower(strings.TrimSpace(raw)))
	if !candidate.Valid() {
		return "", fmt.Errorf("model: unknown field type %q", raw)
	}
	return candidate, nil
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeDropdown, FieldTypeRadio, FieldTypeCheckbox,
		FieldTypeFile, FieldTypeCountry, FieldTypeDate, FieldTypePhone:
		return true
	default:
		return false
	}
}

// IsChoice reports whether the type carries a user-managed options list.
func (t FieldType) IsChoice() bool {
	switch t {
	case FieldTypeDropdown, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

func (t FieldType) String() string {
	return string(t)
}

// Field is a single typed input owned by exactly one Section.
type Field struct {
	ID        string    `json:"id"`
	Type      FieldType `json:"type"`
	Label     string    `json:"label"`
	Options   []string  `json:"options,omitempty"`
	Visible   bool      `json:"visible"`
	DependsOn string    `json:"dependsOn,omitempty"`
	Condition string    `json:"condition,omitempty"`
}

// Section groups fields in creation order.
type Section struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Children  []Field `json:"children"`
	Visible   bool    `json:"visible"`
	DependsOn string  `json:"dependsOn,omitempty"`
	Condition string  `json:"condition,omitempty"`
}

// FormData maps field ids to their current value. Value kinds depend on the
// field type: string, []string, FileRef or time.Time.
type FormData map[string]any

// Clone returns a shallow copy with checkbox selections copied.
func (d FormData) Clone() FormData {
	if d == nil {
		return nil
	}
	out := make(FormData, len(d))
	for key, value := range d {
		if list, ok := value.([]string); ok && list != nil {
			value = append([]string{}, list...)
		}
		out[key] = value
	}
	return out
}

// Errors maps field ids to a human readable message. An empty message means
// the field passed its last validation.
type Errors map[string]string

// Clone returns a copy of the error map.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for key, value := range e {
		out[key] = value
	}
	return out
}

// HasErrors reports whether any entry carries a non-empty message.
func (e Errors) HasErrors() bool {
	for _, msg := range e {
		if msg != "" {
			return true
		}
	}
	return false
}

// FileRef is an opaque handle for a selected file.
type FileRef struct {
	Name        string `json:"name"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// Country is a selectable entry for country fields.
type Country struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// DefaultCountries returns the built-in country list.
func DefaultCountries() []Country {
	return []Country{
		{Code: "US", Name: "United States"},
		{Code: "IN", Name: "India"},
		{Code: "UK", Name: "United Kingdom"},
	}
}

// DateLayout is the textual layout used when dates cross a text boundary.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("model: parse date %q: %w", raw, err)
	}
	return parsed, nil
}

// CloneSections deep copies sections so callers can hand them out safely.
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i, section := range sections {
		out[i] = section
		if section.Children != nil {
			children := make([]Field, len(section.Children))
			for j, field := range section.Children {
				children[j] = field
				if field.Options != nil {
					children[j].Options = append([]string{}, field.Options...)
				}
			}
			out[i].Children = children
		}
	}
	return out
}
