// Package template defines the renderer-agnostic template contract. The
// gotemplate subpackage provides the pongo2-backed implementation used by the
// vanilla HTML renderer.
package template
