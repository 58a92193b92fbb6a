package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Session holds the whole builder state: sections, the selected section,
// form data, per-field errors and the last submission result. Every mutation
// goes through a method. A Session is not safe for concurrent use.
type Session struct {
	sections  []model.Section
	selected  string
	formData  model.FormData
	errors    model.Errors
	submitted model.FormData
	published bool

	ids       model.IDGenerator
	evaluator visibility.Evaluator
	extras    map[string]any
	logger    zerolog.Logger
}

// Submission is the outcome of Submit. Data is set only when Valid; Errors
// lists the failing fields only.
type Submission struct {
	Valid  bool           `json:"valid"`
	Data   model.FormData `json:"data,omitempty"`
	Errors model.Errors   `json:"errors,omitempty"`
}

// New creates an empty session.
func New(options ...Option) *Session {
	s := &Session{
		formData:  make(model.FormData),
		errors:    make(model.Errors),
		ids:       model.NewSequence(),
		evaluator: visibility.Always,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// AddSection appends "Section N" and makes it the target for AddField.
func (s *Session) AddSection() model.Section {
	section := model.Section{
		ID:       s.ids.NextID(),
		Label:    model.SectionLabel(len(s.sections) + 1),
		Children: []model.Field{},
		Visible:  true,
	}
	s.sections = append(s.sections, section)
	s.selected = section.ID

	s.logger.Debug().Str("section", section.ID).Str("label", section.Label).Msg("section added")
	return model.CloneSections([]model.Section{section})[0]
}

// SelectSection re-targets AddField to an existing section.
func (s *Session) SelectSection(id string) error {
	if s.sectionIndex(id) < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	s.selected = id
	return nil
}

// Selected returns the id of the section receiving new fields, or "".
func (s *Session) Selected() string {
	return s.selected
}

// AddField appends a field of type t to the selected section. Without a
// selected section it returns ErrNoSectionSelected and changes nothing.
func (s *Session) AddField(t model.FieldType) (model.Field, error) {
	if !t.Valid() {
		return model.Field{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, t)
	}
	if s.selected == "" {
		return model.Field{}, ErrNoSectionSelected
	}
	idx := s.sectionIndex(s.selected)
	if idx < 0 {
		return model.Field{}, fmt.Errorf("%w: %s", ErrSectionNotFound, s.selected)
	}

	field := model.Field{
		ID:      s.ids.NextID(),
		Type:    t,
		Label:   model.DefaultFieldLabel(t),
		Visible: true,
	}
	if t.IsChoice() {
		field.Options = []string{}
	}
	s.sections[idx].Children = append(s.sections[idx].Children, field)

	s.logger.Debug().Str("section", s.selected).Str("field", field.ID).Str("type", t.String()).Msg("field added")
	return field, nil
}

// AddOption appends a trimmed option to every choice field whose id matches,
// across all sections. Blank options are ignored. It reports whether any
// field received the option.
func (s *Session) AddOption(fieldID, option string) bool {
	option = strings.TrimSpace(option)
	if option == "" {
		return false
	}

	added := false
	for i := range s.sections {
		children := s.sections[i].Children
		for j := range children {
			if children[j].ID != fieldID || !children[j].Type.IsChoice() {
				continue
			}
			children[j].Options = append(children[j].Options, option)
			added = true
		}
	}
	if added {
		s.logger.Debug().Str("field", fieldID).Str("option", option).Msg("option added")
	}
	return added
}

// DeleteItem removes any section with the given id and drops the formData
// and errors entries keyed by id. Fields nested in a removed section keep
// their entries, and a field id does not remove the field from its section;
// use DeleteField for that.
func (s *Session) DeleteItem(id string) error {
	kept := s.sections[:0]
	removed := 0
	for _, section := range s.sections {
		if section.ID == id {
			removed++
			continue
		}
		kept = append(kept, section)
	}
	for i := len(kept); i < len(s.sections); i++ {
		s.sections[i] = model.Section{}
	}
	s.sections = kept

	delete(s.formData, id)
	delete(s.errors, id)
	if removed > 0 && s.selected == id {
		s.selected = ""
	}

	s.logger.Debug().Str("id", id).Int("sections_removed", removed).Msg("item deleted")
	return s.refreshVisibility()
}

// DeleteField removes a field from its section and clears its formData and
// errors entries.
func (s *Session) DeleteField(id string) error {
	si, fi := s.fieldIndex(id)
	if si < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	children := s.sections[si].Children
	s.sections[si].Children = append(children[:fi:fi], children[fi+1:]...)

	delete(s.formData, id)
	delete(s.errors, id)

	s.logger.Debug().Str("field", id).Msg("field deleted")
	return s.refreshVisibility()
}

// SetCondition attaches a visibility condition to a section or field and
// re-evaluates visibility. An empty dependsOn makes the item always visible.
func (s *Session) SetCondition(id, dependsOn, condition string) error {
	dependsOn = strings.TrimSpace(dependsOn)
	condition = strings.TrimSpace(condition)

	if idx := s.sectionIndex(id); idx >= 0 {
		s.sections[idx].DependsOn = dependsOn
		s.sections[idx].Condition = condition
	} else if si, fi := s.fieldIndex(id); si >= 0 {
		s.sections[si].Children[fi].DependsOn = dependsOn
		s.sections[si].Children[fi].Condition = condition
	} else {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return s.refreshVisibility()
}

// Change is the single onChange entry point: it stores value, validates it
// and re-evaluates visibility. A validation failure is recorded in Errors and
// also returned as a *validation.FieldValidationError.
func (s *Session) Change(id string, value any) error {
	if si, _ := s.fieldIndex(id); si < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}
	s.formData[id] = value
	validateErr := s.ValidateField(id, value)
	return errors.Join(validateErr, s.refreshVisibility())
}

// ValidateField runs the field's rule against value. Success clears the
// field's error; a violation stores the first message.
func (s *Session) ValidateField(id string, value any) error {
	field, ok := s.Field(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, id)
	}

	err := validation.ValidateField(field, value)
	var fieldErr *validation.FieldValidationError
	switch {
	case err == nil:
		s.errors[id] = ""
		return nil
	case errors.As(err, &fieldErr):
		s.errors[id] = fieldErr.Message
		return fieldErr
	default:
		return fmt.Errorf("builder: validate field %s: %w", id, err)
	}
}

// Submit validates every field against its stored value. A valid form
// publishes a copy of FormData as the submission result; an invalid one
// clears any previous result. Submit never fails: violations are reported in
// the returned Submission and in Errors.
func (s *Session) Submit() Submission {
	next := make(model.Errors)
	failing := make(model.Errors)

	for _, section := range s.sections {
		for _, field := range section.Children {
			message := ""
			err := validation.ValidateField(field, s.formData[field.ID])
			var fieldErr *validation.FieldValidationError
			switch {
			case err == nil:
			case errors.As(err, &fieldErr):
				message = fieldErr.Message
			default:
				message = err.Error()
			}
			next[field.ID] = message
			if message != "" {
				failing[field.ID] = message
			}
		}
	}
	s.errors = next

	if len(failing) > 0 {
		s.submitted = nil
		s.published = false
		s.logger.Info().Int("invalid_fields", len(failing)).Msg("submission rejected")
		return Submission{Valid: false, Errors: failing}
	}

	s.submitted = s.formData.Clone()
	s.published = true
	s.logger.Info().Int("values", len(s.submitted)).Msg("submission accepted")
	return Submission{Valid: true, Data: s.submitted.Clone()}
}

// Submitted returns the last published submission, if any.
func (s *Session) Submitted() (model.FormData, bool) {
	if !s.published {
		return nil, false
	}
	return s.submitted.Clone(), true
}

// Sections returns a deep copy of the sections in creation order.
func (s *Session) Sections() []model.Section {
	return model.CloneSections(s.sections)
}

// Section looks up a section by id.
func (s *Session) Section(id string) (model.Section, bool) {
	idx := s.sectionIndex(id)
	if idx < 0 {
		return model.Section{}, false
	}
	return model.CloneSections(s.sections[idx : idx+1])[0], true
}

// Field looks up a field by id across all sections.
func (s *Session) Field(id string) (model.Field, bool) {
	si, fi := s.fieldIndex(id)
	if si < 0 {
		return model.Field{}, false
	}
	field := s.sections[si].Children[fi]
	if field.Options != nil {
		field.Options = append([]string{}, field.Options...)
	}
	return field, true
}

// FormData returns a copy of the current values.
func (s *Session) FormData() model.FormData {
	return s.formData.Clone()
}

// Value returns the stored value for a field id.
func (s *Session) Value(id string) (any, bool) {
	value, ok := s.formData[id]
	return value, ok
}

// Errors returns a copy of the per-field error messages.
func (s *Session) Errors() model.Errors {
	return s.errors.Clone()
}

// HasFields reports whether any section holds at least one field, which is
// when a submit action makes sense.
func (s *Session) HasFields() bool {
	for _, section := range s.sections {
		if len(section.Children) > 0 {
			return true
		}
	}
	return false
}

func (s *Session) sectionIndex(id string) int {
	for i, section := range s.sections {
		if section.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) fieldIndex(id string) (int, int) {
	for i, section := range s.sections {
		for j, field := range section.Children {
			if field.ID == id {
				return i, j
			}
		}
	}
	return -1, -1
}
