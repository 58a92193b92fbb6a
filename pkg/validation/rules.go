package validation

import (
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Messages reported by the built-in rules.
const (
	MsgMinLengthText = "Minimum length is 3 characters"
	MsgSelectOption  = "Please select an option"
	MsgSelectOptions = "Please select at least one option"
	MsgUploadFile    = "Please upload a file"
	MsgSelectCountry = "Please select a country"
	MsgInvalidPhone  = "Invalid phone number"
	MsgDateRequired  = "Required"
	MsgDateInvalid   = "Invalid date"
)

const (
	minTextLength    = 3
	minPhoneLength   = 10
	expectedTemplate = "Expected %s, received %s"

	kindUndefined     = "undefined"
	kindDate          = "date"
	kindString        = "string"
	kindArray         = "array"
	kindFileReference = "file"
)

// Rule checks a value and returns its violations in order. A nil or empty
// result means the value passed.
type Rule func(value any) []string

// RuleFor returns the rule bound to a field type.
func RuleFor(t model.FieldType) (Rule, error) {
	switch t {
	case model.FieldTypeText:
		return minLength(minTextLength, MsgMinLengthText), nil
	case model.FieldTypeDropdown, model.FieldTypeRadio:
		return nonEmptyString(MsgSelectOption), nil
	case model.FieldTypeCheckbox:
		return nonEmptyList(MsgSelectOptions), nil
	case model.FieldTypeFile:
		return fileRef(MsgUploadFile), nil
	case model.FieldTypeCountry:
		return nonEmptyString(MsgSelectCountry), nil
	case model.FieldTypeDate:
		return validDate, nil
	case model.FieldTypePhone:
		return minLength(minPhoneLength, MsgInvalidPhone), nil
	default:
		return nil, fmt.Errorf("validation: no rule for field type %q", t)
	}
}

// Check runs the rule for t and returns the first violation message, or ""
// when the value passes.
func Check(t model.FieldType, value any) (string, error) {
	rule, err := RuleFor(t)
	if err != nil {
		return "", err
	}
	if violations := rule(value); len(violations) > 0 {
		return violations[0], nil
	}
	return "", nil
}

func minLength(min int, message string) Rule {
	return func(value any) []string {
		text, ok := stringValue(value)
		if !ok {
			return []string{expected(kindString, value)}
		}
		if utf8.RuneCountInString(text) < min {
			return []string{message}
		}
		return nil
	}
}

func nonEmptyString(message string) Rule {
	return func(value any) []string {
		text, ok := stringValue(value)
		if !ok {
			return []string{expected(kindString, value)}
		}
		if text == "" {
			return []string{message}
		}
		return nil
	}
}

func nonEmptyList(message string) Rule {
	return func(value any) []string {
		var items []string
		switch typed := value.(type) {
		case nil:
		case []string:
			items = typed
		case []any:
			for _, item := range typed {
				text, ok := item.(string)
				if !ok {
					return []string{expected(kindString, item)}
				}
				items = append(items, text)
			}
		default:
			return []string{expected(kindArray, value)}
		}
		if len(items) == 0 {
			return []string{message}
		}
		return nil
	}
}

func fileRef(message string) Rule {
	return func(value any) []string {
		switch typed := value.(type) {
		case model.FileRef:
			if typed.Name != "" {
				return nil
			}
		case *model.FileRef:
			if typed != nil && typed.Name != "" {
				return nil
			}
		}
		return []string{message}
	}
}

func validDate(value any) []string {
	switch typed := value.(type) {
	case nil:
		return []string{MsgDateRequired}
	case time.Time:
		if typed.IsZero() {
			return []string{MsgDateInvalid}
		}
		return nil
	case *time.Time:
		if typed == nil {
			return []string{MsgDateRequired}
		}
		if typed.IsZero() {
			return []string{MsgDateInvalid}
		}
		return nil
	default:
		return []string{expected(kindDate, value)}
	}
}

// stringValue treats a missing value as the empty string.
func stringValue(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", true
	case string:
		return typed, true
	default:
		return "", false
	}
}

func expected(want string, value any) string {
	return fmt.Sprintf(expectedTemplate, want, kindOf(value))
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return kindUndefined
	case string:
		return kindString
	case time.Time, *time.Time:
		return kindDate
	case model.FileRef, *model.FileRef:
		return kindFileReference
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return kindArray
	default:
		return "object"
	}
}
