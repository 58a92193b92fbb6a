package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/fields/*.tmpl
var templatesFS embed.FS

//go:embed assets/formbuilder.css
var assetsFS embed.FS

// TemplatesFS exposes the built-in templates so callers can layer overrides.
func TemplatesFS() fs.FS {
	return templatesFS
}

// AssetsFS exposes the stylesheet bundled with the renderer.
func AssetsFS() fs.FS {
	return assetsFS
}
