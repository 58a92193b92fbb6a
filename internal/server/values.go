package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// decodeValue turns a JSON value into the Go shape the validation rules
// expect for t. Values of the wrong kind are passed through unchanged so the
// rule can name what it received.
func decodeValue(t model.FieldType, raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("server: decode value: %w", err)
	}

	switch t {
	case model.FieldTypeCheckbox:
		list, ok := generic.([]any)
		if !ok {
			return generic, nil
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			str, ok := item.(string)
			if !ok {
				return generic, nil
			}
			out = append(out, str)
		}
		return out, nil
	case model.FieldTypeDate:
		str, ok := generic.(string)
		if !ok {
			return generic, nil
		}
		return parseDateInput(str), nil
	case model.FieldTypeFile:
		if _, ok := generic.(map[string]any); !ok {
			return generic, nil
		}
		var ref model.FileRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			return nil, fmt.Errorf("server: decode file: %w", err)
		}
		return ref, nil
	default:
		return generic, nil
	}
}

// parseDateInput maps "" to nil and unparsable text to the zero time, which
// the date rule reports as "Invalid date".
func parseDateInput(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// formValue reads the posted value of field. ok is false when the request
// carries nothing to apply, e.g. a file input left empty.
func formValue(r *http.Request, field model.Field) (any, bool) {
	key := "field-" + field.ID
	switch field.Type {
	case model.FieldTypeCheckbox:
		return append([]string{}, r.Form[key]...), true
	case model.FieldTypeFile:
		if r.MultipartForm == nil {
			return nil, false
		}
		files := r.MultipartForm.File[key]
		if len(files) == 0 || files[0].Filename == "" {
			return nil, false
		}
		header := files[0]
		return model.FileRef{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		}, true
	case model.FieldTypeDate:
		return parseDateInput(r.Form.Get(key)), true
	default:
		return r.Form.Get(key), true
	}
}

// changed reports whether next should be applied. Untouched empty inputs are
// skipped so a page round trip does not flag fields the user never edited.
func changed(current any, had bool, next any) bool {
	if !had {
		return !isEmpty(next)
	}
	return !reflect.DeepEqual(current, next)
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	default:
		return false
	}
}
