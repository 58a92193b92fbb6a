// Package formbuilder is the quick start entry point: it wires a builder
// session to the built-in renderers.
package formbuilder

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

// Session is the builder state machine.
type Session = builder.Session

// RenderOptions aliases render.RenderOptions for callers that only import
// the root package.
type RenderOptions = render.RenderOptions

// FieldType aliases model.FieldType.
type FieldType = model.FieldType

// NewSession returns a session that evaluates visibility conditions with the
// expression evaluator. Later options win, so WithEvaluator still overrides.
func NewSession(options ...builder.Option) *Session {
	opts := append([]builder.Option{builder.WithEvaluator(expr.New())}, options...)
	return builder.New(opts...)
}

// NewRegistry registers the vanilla HTML and terminal preview renderers.
func NewRegistry(options ...vanilla.Option) (*render.Registry, error) {
	html, err := vanilla.New(options...)
	if err != nil {
		return nil, fmt.Errorf("formbuilder: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(tui.Renderer{}); err != nil {
		return nil, err
	}
	return registry, nil
}

// RenderHTML renders session with the vanilla renderer.
func RenderHTML(ctx context.Context, session *Session, options RenderOptions) ([]byte, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	out, _, err := registry.Render(ctx, "vanilla", session, options)
	return out, err
}

// EmbeddedTemplates exposes the built-in vanilla templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet under its bare file name, ready for
// http.FileServerFS.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(vanilla.AssetsFS(), "assets")
	if err != nil {
		return vanilla.AssetsFS()
	}
	return sub
}
