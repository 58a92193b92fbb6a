package validation

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FieldValidationError is the single domain error kind: a human readable
// message attached to a field id.
type FieldValidationError struct {
	FieldID string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("validation: field %s: %s", e.FieldID, e.Message)
}

// ValidateField runs the type rule for field against value and, for choice
// types, checks that the field has options and the value uses them. It
// returns a *FieldValidationError on violation, nil on success, and a plain
// error when the field type has no rule.
func ValidateField(field model.Field, value any) error {
	message, err := Check(field.Type, value)
	if err != nil {
		return err
	}
	if message == "" && field.Type.IsChoice() {
		message = checkOptions(field, value)
	}
	if message == "" {
		return nil
	}
	return &FieldValidationError{FieldID: field.ID, Message: message}
}

// checkOptions assumes the type rule already passed.
func checkOptions(field model.Field, value any) string {
	failure := MsgSelectOption
	if field.Type == model.FieldTypeCheckbox {
		failure = MsgSelectOptions
	}
	if len(field.Options) == 0 {
		return failure
	}

	allowed := make(map[string]struct{}, len(field.Options))
	for _, option := range field.Options {
		allowed[option] = struct{}{}
	}

	for _, selected := range selections(value) {
		if _, ok := allowed[selected]; !ok {
			return failure
		}
	}
	return ""
}

func selections(value any) []string {
	switch typed := value.(type) {
	case string:
		return []string{typed}
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if text, ok := item.(string); ok {
				out = append(out, text)
			}
		}
		return out
	default:
		return nil
	}
}
