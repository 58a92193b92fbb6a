package tui

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

type action string

const (
	actionAddSection    action = "Add Section"
	actionSelectSection action = "Select Section"
	actionAddField      action = "Add Field"
	actionAddOption     action = "Add Option"
	actionSetValue      action = "Set Value"
	actionSetCondition  action = "Set Condition"
	actionDeleteSection action = "Delete Section"
	actionDeleteField   action = "Delete Field"
	actionPreview       action = "Preview"
	actionSubmit        action = "Submit"
	actionQuit          action = "Quit"
)

var menu = []action{
	actionAddSection,
	actionSelectSection,
	actionAddField,
	actionAddOption,
	actionSetValue,
	actionSetCondition,
	actionDeleteSection,
	actionDeleteField,
	actionPreview,
	actionSubmit,
	actionQuit,
}

// Builder runs the form builder as a prompt loop over a session.
type Builder struct {
	session   *builder.Session
	driver    PromptDriver
	preview   Renderer
	countries []model.Country
	title     string
	logger    zerolog.Logger
}

// NewBuilder wires a prompt loop around session. Without WithPromptDriver the
// survey driver on stdout is used.
func NewBuilder(session *builder.Session, options ...Option) *Builder {
	b := &Builder{
		session:   session,
		countries: model.DefaultCountries(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	if b.session == nil {
		b.session = builder.New()
	}
	if b.driver == nil {
		b.driver = NewSurveyDriver(os.Stdout)
	}
	return b
}

// Session exposes the session being edited.
func (b *Builder) Session() *builder.Session {
	return b.session
}

// Run shows the menu until the user quits. ErrAborted is returned when the
// user interrupts a prompt.
func (b *Builder) Run(ctx context.Context) error {
	labels := make([]string, len(menu))
	for i, a := range menu {
		labels[i] = string(a)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx, err := b.driver.Select(ctx, SelectConfig{
			Message:  "What next?",
			Options:  labels,
			PageSize: len(labels),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(menu) {
			continue
		}
		if menu[idx] == actionQuit {
			return nil
		}

		if err := b.dispatch(ctx, menu[idx]); err != nil {
			if errors.Is(err, ErrAborted) || ctx.Err() != nil {
				return err
			}
			if err := b.driver.Info(ctx, b.describe(err)); err != nil {
				return err
			}
		}
	}
}

func (b *Builder) dispatch(ctx context.Context, a action) error {
	switch a {
	case actionAddSection:
		section := b.session.AddSection()
		return b.driver.Info(ctx, "Added "+section.Label)
	case actionSelectSection:
		section, err := b.pickSection(ctx, "Select a section")
		if err != nil {
			return err
		}
		return b.session.SelectSection(section.ID)
	case actionAddField:
		return b.addField(ctx)
	case actionAddOption:
		return b.addOption(ctx)
	case actionSetValue:
		return b.setValue(ctx)
	case actionSetCondition:
		return b.setCondition(ctx)
	case actionDeleteSection:
		section, err := b.pickSection(ctx, "Delete which section?")
		if err != nil {
			return err
		}
		ok, err := b.driver.Confirm(ctx, ConfirmConfig{Message: "Delete " + section.Label + "?"})
		if err != nil || !ok {
			return err
		}
		return b.session.DeleteItem(section.ID)
	case actionDeleteField:
		field, err := b.pickField(ctx, "Delete which field?", nil)
		if err != nil {
			return err
		}
		return b.session.DeleteField(field.ID)
	case actionPreview:
		return b.showPreview(ctx)
	case actionSubmit:
		return b.submit(ctx)
	default:
		return fmt.Errorf("tui: unknown action %q", a)
	}
}

func (b *Builder) addField(ctx context.Context) error {
	if b.session.Selected() == "" {
		return builder.ErrNoSectionSelected
	}
	types := model.FieldTypes()
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = model.ToolbarLabel(t)
	}
	idx, err := b.driver.Select(ctx, SelectConfig{Message: "Field type", Options: labels, PageSize: len(labels)})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(types) {
		return nil
	}
	field, err := b.session.AddField(types[idx])
	if err != nil {
		return err
	}
	return b.driver.Info(ctx, "Added "+field.Label)
}

func (b *Builder) addOption(ctx context.Context) error {
	field, err := b.pickField(ctx, "Add an option to", func(f model.Field) bool {
		return f.Type.IsChoice()
	})
	if err != nil {
		return err
	}
	option, err := b.driver.Input(ctx, InputConfig{Message: "Option text"})
	if err != nil {
		return err
	}
	if !b.session.AddOption(field.ID, option) {
		return b.driver.Info(ctx, "Option ignored.")
	}
	return nil
}

func (b *Builder) setValue(ctx context.Context) error {
	field, err := b.pickField(ctx, "Fill in which field?", func(f model.Field) bool { return f.Visible })
	if err != nil {
		return err
	}
	value, err := b.promptValue(ctx, field)
	if err != nil {
		return err
	}
	return b.session.Change(field.ID, value)
}

func (b *Builder) promptValue(ctx context.Context, field model.Field) (any, error) {
	current, _ := b.session.Value(field.ID)

	switch field.Type {
	case model.FieldTypeText, model.FieldTypePhone:
		text, err := b.driver.Input(ctx, InputConfig{
			Message: field.Label,
			Default: render.DisplayValue(current),
		})
		if err != nil {
			return nil, err
		}
		return text, nil
	case model.FieldTypeDropdown, model.FieldTypeRadio:
		if len(field.Options) == 0 {
			return nil, fmt.Errorf("%w: add an option first", ErrNoChoices)
		}
		idx, err := b.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, render.DisplayValue(current)),
		})
		if err != nil || idx < 0 {
			return nil, err
		}
		return field.Options[idx], nil
	case model.FieldTypeCheckbox:
		if len(field.Options) == 0 {
			return nil, fmt.Errorf("%w: add an option first", ErrNoChoices)
		}
		checked, _ := current.([]string)
		indices, err := b.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.Label,
			Options:  field.Options,
			Defaults: indicesOf(field.Options, checked),
		})
		if err != nil {
			return nil, err
		}
		selected := make([]string, 0, len(indices))
		for _, idx := range indices {
			selected = append(selected, field.Options[idx])
		}
		return selected, nil
	case model.FieldTypeCountry:
		names := make([]string, len(b.countries))
		codes := make([]string, len(b.countries))
		for i, country := range b.countries {
			names[i] = country.Name
			codes[i] = country.Code
		}
		idx, err := b.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      names,
			DefaultIndex: indexOf(codes, render.DisplayValue(current)),
		})
		if err != nil || idx < 0 {
			return nil, err
		}
		return codes[idx], nil
	case model.FieldTypeDate:
		raw, err := b.driver.Input(ctx, InputConfig{
			Message: field.Label,
			Default: render.DisplayValue(current),
			Help:    "Format: YYYY-MM-DD",
			Validator: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				_, err := model.ParseDate(s)
				return err
			},
		})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		date, err := model.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		return date, nil
	case model.FieldTypeFile:
		return b.promptFile(ctx, field)
	default:
		return nil, fmt.Errorf("%w: %s", builder.ErrUnknownFieldType, field.Type)
	}
}

func (b *Builder) promptFile(ctx context.Context, field model.Field) (any, error) {
	path, err := b.driver.Input(ctx, InputConfig{Message: field.Label, Help: "Path to the file"})
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	ref := model.FileRef{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}
	info, err := os.Stat(path)
	if err != nil {
		b.logger.Debug().Err(err).Str("path", path).Msg("file not readable")
		keep, err := b.driver.Confirm(ctx, ConfirmConfig{
			Message: "File not found. Record " + ref.Name + " anyway?",
		})
		if err != nil || !keep {
			return nil, err
		}
		return ref, nil
	}
	ref.Size = info.Size()
	return ref, nil
}

func (b *Builder) setCondition(ctx context.Context) error {
	sections := b.session.Sections()
	var ids, labels []string
	for _, section := range sections {
		ids = append(ids, section.ID)
		labels = append(labels, section.Label)
		for _, field := range section.Children {
			ids = append(ids, field.ID)
			labels = append(labels, section.Label+" / "+field.Label)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: add a section first", ErrNoChoices)
	}
	idx, err := b.driver.Select(ctx, SelectConfig{Message: "Show which item conditionally?", Options: labels})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(ids) {
		return ErrNoChoices
	}
	target := ids[idx]

	dependee, err := b.pickField(ctx, "Depends on", func(f model.Field) bool { return f.ID != target })
	if err != nil {
		return err
	}
	condition, err := b.driver.Input(ctx, InputConfig{
		Message: "Condition",
		Default: "value",
		Help:    `e.g. value == "yes" or value && extras.beta`,
	})
	if err != nil {
		return err
	}
	return b.session.SetCondition(target, dependee.ID, condition)
}

func (b *Builder) showPreview(ctx context.Context) error {
	view, err := render.NewFormView(b.session)
	if err != nil {
		return err
	}
	out, err := b.preview.Render(ctx, view, render.RenderOptions{Title: b.title, Countries: b.countries})
	if err != nil {
		return err
	}
	return b.driver.Info(ctx, string(out))
}

func (b *Builder) submit(ctx context.Context) error {
	if !b.session.HasFields() {
		return b.driver.Info(ctx, "Add a field before submitting.")
	}
	result := b.session.Submit()
	if result.Valid {
		return b.showPreview(ctx)
	}

	labels := map[string]string{}
	for _, section := range b.session.Sections() {
		for _, field := range section.Children {
			labels[field.ID] = field.Label
		}
	}
	ids := make([]string, 0, len(result.Errors))
	for id := range result.Errors {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	lines := []string{styles.Error.Render("Please fix the highlighted fields:")}
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("  %s: %s", labels[id], result.Errors[id]))
	}
	return b.driver.Info(ctx, strings.Join(lines, "\n"))
}

func (b *Builder) pickSection(ctx context.Context, message string) (model.Section, error) {
	sections := b.session.Sections()
	if len(sections) == 0 {
		return model.Section{}, fmt.Errorf("%w: add a section first", ErrNoChoices)
	}
	labels := make([]string, len(sections))
	selected := -1
	for i, section := range sections {
		labels[i] = section.Label
		if section.ID == b.session.Selected() {
			selected = i
		}
	}
	idx, err := b.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: selected})
	if err != nil {
		return model.Section{}, err
	}
	if idx < 0 || idx >= len(sections) {
		return model.Section{}, ErrNoChoices
	}
	return sections[idx], nil
}

func (b *Builder) pickField(ctx context.Context, message string, keep func(model.Field) bool) (model.Field, error) {
	var fields []model.Field
	var labels []string
	for _, section := range b.session.Sections() {
		for _, field := range section.Children {
			if keep != nil && !keep(field) {
				continue
			}
			fields = append(fields, field)
			labels = append(labels, section.Label+" / "+field.Label)
		}
	}
	if len(fields) == 0 {
		return model.Field{}, fmt.Errorf("%w: no matching fields", ErrNoChoices)
	}
	idx, err := b.driver.Select(ctx, SelectConfig{Message: message, Options: labels})
	if err != nil {
		return model.Field{}, err
	}
	if idx < 0 || idx >= len(fields) {
		return model.Field{}, ErrNoChoices
	}
	return fields[idx], nil
}

// describe turns an operation error into a line for the user.
func (b *Builder) describe(err error) string {
	if warning := builder.Warning(err); warning != "" {
		return styles.Warning.Render(warning)
	}
	var fieldErr *validation.FieldValidationError
	if errors.As(err, &fieldErr) {
		label := fieldErr.FieldID
		if field, ok := b.session.Field(fieldErr.FieldID); ok {
			label = field.Label
		}
		return styles.Error.Render(label + ": " + fieldErr.Message)
	}
	b.logger.Debug().Err(err).Msg("builder action failed")
	return styles.Error.Render(strings.TrimPrefix(err.Error(), "tui: "))
}
