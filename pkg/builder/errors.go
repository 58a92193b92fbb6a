package builder

import "errors"

var (
	// ErrNoSectionSelected is reported when a field is added before any
	// section has been created or selected.
	ErrNoSectionSelected = errors.New("builder: no section selected")
	// ErrSectionNotFound signals an unknown section id.
	ErrSectionNotFound = errors.New("builder: section not found")
	// ErrFieldNotFound signals an unknown field id.
	ErrFieldNotFound = errors.New("builder: field not found")
	// ErrItemNotFound signals an id matching neither a section nor a field.
	ErrItemNotFound = errors.New("builder: item not found")
	// ErrUnknownFieldType wraps field types outside the supported set.
	ErrUnknownFieldType = errors.New("builder: unknown field type")
)

// Warning returns the user-facing text for precondition errors, or "" when
// err is not one of them.
func Warning(err error) string {
	switch {
	case errors.Is(err, ErrNoSectionSelected):
		return "Please select a section first!"
	case errors.Is(err, ErrSectionNotFound):
		return "That section no longer exists."
	case errors.Is(err, ErrFieldNotFound):
		return "That field no longer exists."
	case errors.Is(err, ErrItemNotFound):
		return "Nothing matches that id."
	case errors.Is(err, ErrUnknownFieldType):
		return "Unsupported field type."
	default:
		return ""
	}
}
