package template

import (
	"io"
)

// TemplateRenderer is the seam HTML renderers rely on. Implementations load
// named templates from a bundle and execute them with map or struct data.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
}
