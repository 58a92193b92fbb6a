package render_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

func TestNewFormView_ProjectsSession(t *testing.T) {
	s := builder.New()
	section := s.AddSection()
	text, _ := s.AddField(model.FieldTypeText)
	boxes, _ := s.AddField(model.FieldTypeCheckbox)
	date, _ := s.AddField(model.FieldTypeDate)
	s.AddOption(boxes.ID, "a")
	s.AddOption(boxes.ID, "b")
	_ = s.Change(text.ID, "ab")
	_ = s.Change(boxes.ID, []string{"b"})
	_ = s.Change(date.ID, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC))

	view, err := render.NewFormView(s)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	if !view.CanSubmit || view.Selected != section.ID || view.HasSubmission {
		t.Fatalf("unexpected view flags: %+v", view)
	}
	if len(view.Sections) != 1 || !view.Sections[0].Selected {
		t.Fatalf("unexpected sections: %+v", view.Sections)
	}

	fields := view.Sections[0].Fields
	got := []string{fields[0].Error, fields[1].Display, fields[2].Display}
	want := []string{"Minimum length is 3 characters", "b", "2024-05-17"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("field projection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, fields[1].Checked); diff != "" {
		t.Fatalf("checked mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.FieldTypes(), view.FieldTypes); diff != "" {
		t.Fatalf("field types mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFormView_Submission(t *testing.T) {
	s := builder.New()
	s.AddSection()
	text, _ := s.AddField(model.FieldTypeText)
	_ = s.Change(text.ID, "hello")
	s.Submit()

	view, err := render.NewFormView(s)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !view.HasSubmission {
		t.Fatalf("expected submission in view")
	}
	want := "{\n  \"" + text.ID + "\": \"hello\"\n}"
	if view.SubmittedJSON != want {
		t.Fatalf("unexpected submission json:\n%s", view.SubmittedJSON)
	}
}

func TestVisibleSections_DropsHiddenItems(t *testing.T) {
	s := builder.New(builder.WithEvaluator(expr.New()))
	s.AddSection()
	trigger, _ := s.AddField(model.FieldTypeText)
	hidden, _ := s.AddField(model.FieldTypeText)
	second := s.AddSection()
	_ = s.SetCondition(hidden.ID, trigger.ID, "value")
	_ = s.SetCondition(second.ID, trigger.ID, "value")

	view, err := render.NewFormView(s)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Sections) != 2 {
		t.Fatalf("hidden items must stay in the view")
	}

	visible := view.VisibleSections()
	if len(visible) != 1 || len(visible[0].Fields) != 1 || visible[0].Fields[0].ID != trigger.ID {
		t.Fatalf("unexpected visible sections: %+v", visible)
	}
}

func TestDisplayValue(t *testing.T) {
	t.Parallel()

	cases := map[string]any{
		"":           nil,
		"plain":      "plain",
		"a, b":       []string{"a", "b"},
		"cv.pdf":     model.FileRef{Name: "cv.pdf"},
		"1999-12-31": time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for want, value := range cases {
		if got := render.DisplayValue(value); got != want {
			t.Fatalf("DisplayValue(%#v) = %q, want %q", value, got, want)
		}
	}
}

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(_ context.Context, view render.FormView, _ render.RenderOptions) ([]byte, error) {
	return []byte(strings.Repeat("#", len(view.Sections))), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "b"})
	registry.MustRegister(stubRenderer{name: "a"})

	if err := registry.Register(stubRenderer{name: "a"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected error for unnamed renderer")
	}
	if diff := cmp.Diff([]string{"a", "b"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	s := builder.New()
	s.AddSection()
	s.AddSection()
	out, contentType, err := registry.Render(context.Background(), "a", s, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "##" || contentType != "text/plain" {
		t.Fatalf("unexpected output %q %q", out, contentType)
	}

	if _, _, err := registry.Render(context.Background(), "missing", s, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for unknown renderer")
	}
}
