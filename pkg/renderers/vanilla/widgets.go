package vanilla

import (
	"fmt"
	"html"
	"slices"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

const fieldTemplateDir = "templates/fields/"

// widgetTemplate maps every field type to its partial.
func widgetTemplate(t model.FieldType) (string, error) {
	switch t {
	case model.FieldTypeText:
		return fieldTemplateDir + "text", nil
	case model.FieldTypeDropdown:
		return fieldTemplateDir + "dropdown", nil
	case model.FieldTypeRadio:
		return fieldTemplateDir + "radio", nil
	case model.FieldTypeCheckbox:
		return fieldTemplateDir + "checkbox", nil
	case model.FieldTypeFile:
		return fieldTemplateDir + "file", nil
	case model.FieldTypeCountry:
		return fieldTemplateDir + "country", nil
	case model.FieldTypeDate:
		return fieldTemplateDir + "date", nil
	case model.FieldTypePhone:
		return fieldTemplateDir + "phone", nil
	default:
		return "", fmt.Errorf("vanilla: no widget for field type %q", t)
	}
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

func widgetOptions(field render.FieldView, countries []model.Country) []optionView {
	switch field.Type {
	case model.FieldTypeCountry:
		out := make([]optionView, 0, len(countries))
		for _, country := range countries {
			out = append(out, optionView{
				Value:    country.Code,
				Label:    plainText(country.Name),
				Selected: field.Display == country.Code,
			})
		}
		return out
	case model.FieldTypeDropdown, model.FieldTypeRadio, model.FieldTypeCheckbox:
		out := make([]optionView, 0, len(field.Options))
		for _, option := range field.Options {
			selected := field.Display == option
			if field.Type == model.FieldTypeCheckbox {
				selected = slices.Contains(field.Checked, option)
			}
			out = append(out, optionView{
				Value:    option,
				Label:    plainText(option),
				Selected: selected,
			})
		}
		return out
	default:
		return nil
	}
}

var (
	strictPolicy     *bluemonday.Policy
	strictPolicyOnce sync.Once
)

// plainText strips markup from user supplied labels. The template engine
// escapes the result again on output.
func plainText(s string) string {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
