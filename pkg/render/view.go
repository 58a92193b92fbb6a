package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Source is the read side of a builder session. builder.Session satisfies it.
type Source interface {
	Sections() []model.Section
	FormData() model.FormData
	Errors() model.Errors
	Submitted() (model.FormData, bool)
	Selected() string
	HasFields() bool
}

// FieldView is everything a renderer needs to draw one widget.
type FieldView struct {
	ID      string          `json:"id"`
	Type    model.FieldType `json:"type"`
	Label   string          `json:"label"`
	Options []string        `json:"options,omitempty"`
	Visible bool            `json:"visible"`
	Error   string          `json:"error,omitempty"`
	Value   any             `json:"value,omitempty"`
	// Display is the value as text, ready for an input's value attribute.
	Display string `json:"display,omitempty"`
	// Checked lists the selected options of checkbox fields.
	Checked []string `json:"checked,omitempty"`
}

// SectionView describes a section and its fields.
type SectionView struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Visible  bool        `json:"visible"`
	Selected bool        `json:"selected"`
	Fields   []FieldView `json:"fields"`
}

// FormView is the complete rendering boundary for one builder state.
type FormView struct {
	Sections      []SectionView     `json:"sections"`
	Selected      string            `json:"selected,omitempty"`
	CanSubmit     bool              `json:"canSubmit"`
	FieldTypes    []model.FieldType `json:"fieldTypes"`
	HasSubmission bool              `json:"hasSubmission"`
	Submitted     model.FormData    `json:"submitted,omitempty"`
	// SubmittedJSON is Submitted pretty printed with two-space indentation.
	SubmittedJSON string `json:"-"`
}

// NewFormView snapshots src into a view.
func NewFormView(src Source) (FormView, error) {
	if src == nil {
		return FormView{}, fmt.Errorf("render: view source is nil")
	}

	data := src.FormData()
	errs := src.Errors()
	selected := src.Selected()

	sections := src.Sections()
	view := FormView{
		Sections:   make([]SectionView, 0, len(sections)),
		Selected:   selected,
		CanSubmit:  src.HasFields(),
		FieldTypes: model.FieldTypes(),
	}

	for _, section := range sections {
		sv := SectionView{
			ID:       section.ID,
			Label:    section.Label,
			Visible:  section.Visible,
			Selected: section.ID == selected,
			Fields:   make([]FieldView, 0, len(section.Children)),
		}
		for _, field := range section.Children {
			value := data[field.ID]
			sv.Fields = append(sv.Fields, FieldView{
				ID:      field.ID,
				Type:    field.Type,
				Label:   field.Label,
				Options: field.Options,
				Visible: field.Visible,
				Error:   errs[field.ID],
				Value:   value,
				Display: DisplayValue(value),
				Checked: checkedValues(value),
			})
		}
		view.Sections = append(view.Sections, sv)
	}

	if submitted, ok := src.Submitted(); ok {
		payload, err := json.MarshalIndent(submitted, "", "  ")
		if err != nil {
			return FormView{}, fmt.Errorf("render: encode submission: %w", err)
		}
		view.HasSubmission = true
		view.Submitted = submitted
		view.SubmittedJSON = string(payload)
	}

	return view, nil
}

// VisibleSections returns the sections a renderer should draw, with hidden
// fields removed.
func (v FormView) VisibleSections() []SectionView {
	out := make([]SectionView, 0, len(v.Sections))
	for _, section := range v.Sections {
		if !section.Visible {
			continue
		}
		fields := make([]FieldView, 0, len(section.Fields))
		for _, field := range section.Fields {
			if field.Visible {
				fields = append(fields, field)
			}
		}
		section.Fields = fields
		out = append(out, section)
	}
	return out
}

// DisplayValue formats a stored value as text.
func DisplayValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []string:
		return strings.Join(typed, ", ")
	case time.Time:
		if typed.IsZero() {
			return ""
		}
		return typed.Format(model.DateLayout)
	case model.FileRef:
		return typed.Name
	case *model.FileRef:
		if typed == nil {
			return ""
		}
		return typed.Name
	default:
		return fmt.Sprint(value)
	}
}

func checkedValues(value any) []string {
	list, ok := value.([]string)
	if !ok || len(list) == 0 {
		return nil
	}
	return append([]string(nil), list...)
}
