package vanilla

import (
	"context"
	"fmt"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	gotemplate "github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
)

const (
	pageTemplate = "templates/page"
	defaultTitle = "Dynamic Form Builder"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
		cfg.templateDir = ""
	}
}

// WithTemplatesDir loads templates from a directory on disk. The directory
// must mirror the embedded layout (templates/page.tmpl, templates/fields/...).
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateDir = path
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme resolves variant of manifest into CSS variables for the page.
func WithTheme(manifest *theme.Manifest, variant string) Option {
	return func(cfg *config) {
		cfg.theme = ThemeConfig(manifest, variant)
	}
}

// Renderer draws the builder as a server-rendered HTML page. Every button is
// a plain form post so the page works without scripts.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	theme      *theme.RendererConfig
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.theme == nil {
		cfg.theme = ThemeConfig(DefaultManifest(), "")
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		source := gotemplate.WithFS(cfg.templateFS)
		if cfg.templateDir != "" {
			source = gotemplate.WithBaseDir(cfg.templateDir)
		}
		engine, err := gotemplate.New(source, gotemplate.WithExtension(".tmpl"))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	css, err := fs.ReadFile(AssetsFS(), "assets/formbuilder.css")
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: read stylesheet: %w", err)
	}

	return &Renderer{
		templates:  renderer,
		theme:      cfg.theme,
		stylesheet: string(css),
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, view render.FormView, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	countries := options.CountriesOrDefault()
	sections := make([]map[string]any, 0, len(view.Sections))
	for _, section := range view.VisibleSections() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields := make([]map[string]any, 0, len(section.Fields))
		for _, field := range section.Fields {
			widget, err := r.renderWidget(field, countries, options.ActionPrefix)
			if err != nil {
				return nil, err
			}
			fields = append(fields, map[string]any{
				"id":    field.ID,
				"type":  string(field.Type),
				"label": plainText(field.Label),
				"error": field.Error,
				"html":  widget,
			})
		}
		sections = append(sections, map[string]any{
			"id":       section.ID,
			"label":    plainText(section.Label),
			"selected": section.Selected,
			"fields":   fields,
		})
	}

	toolbar := make([]map[string]any, 0, len(view.FieldTypes))
	for _, t := range view.FieldTypes {
		toolbar = append(toolbar, map[string]any{
			"type":  string(t),
			"label": model.ToolbarLabel(t),
		})
	}

	title := options.Title
	if title == "" {
		title = defaultTitle
	}

	result, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"title":          title,
		"warning":        options.Warning,
		"prefix":         options.ActionPrefix,
		"theme_name":     r.theme.Theme,
		"css_vars":       cssVarsInline(r.theme.CSSVars),
		"stylesheet":     r.stylesheet,
		"toolbar":        toolbar,
		"sections":       sections,
		"can_submit":     view.CanSubmit,
		"has_submission": view.HasSubmission,
		"submitted_json": view.SubmittedJSON,
		"hidden_fields":  render.SortedHiddenFields(options.HiddenFields),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderWidget(field render.FieldView, countries []model.Country, prefix string) (string, error) {
	name, err := widgetTemplate(field.Type)
	if err != nil {
		return "", err
	}
	out, err := r.templates.RenderTemplate(name, map[string]any{
		"field":   field,
		"options": widgetOptions(field, countries),
		"prefix":  prefix,
	})
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: render %s field %s: %w", field.Type, field.ID, err)
	}
	return out, nil
}
