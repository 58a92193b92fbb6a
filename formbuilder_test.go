package formbuilder

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func TestNewRegistryListsBuiltins(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"tui", "vanilla"}, registry.List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSessionEvaluatesConditions(t *testing.T) {
	s := NewSession()
	s.AddSection()
	trigger, _ := s.AddField(model.FieldTypeText)
	dependent, _ := s.AddField(model.FieldTypeDate)

	if err := s.SetCondition(dependent.ID, trigger.ID, `value == "yes"`); err != nil {
		t.Fatalf("set condition: %v", err)
	}
	if field, _ := s.Field(dependent.ID); field.Visible {
		t.Fatalf("expected field hidden until trigger matches")
	}
	_ = s.Change(trigger.ID, "yes")
	if field, _ := s.Field(dependent.ID); !field.Visible {
		t.Fatalf("expected field visible after trigger matches")
	}
}

func TestRenderHTML(t *testing.T) {
	s := NewSession()
	s.AddSection()

	out, err := RenderHTML(context.Background(), s, RenderOptions{Title: "Quick start"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "<title>Quick start</title>") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestEmbeddedFS(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/page.tmpl"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
	css, err := fs.ReadFile(AssetsFS(), "formbuilder.css")
	if err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
	if !strings.Contains(string(css), "var(--brand)") {
		t.Fatalf("stylesheet should use theme variables")
	}
}
