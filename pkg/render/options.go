package render

import "github.com/goliatone/go-formbuilder/pkg/model"

// RenderOptions describe per-request data renderers can use without touching
// the session.
type RenderOptions struct {
	// Title is the page heading; renderers fall back to "Dynamic Form Builder".
	Title string
	// Warning is a one-shot message such as "Please select a section first!".
	Warning string
	// Countries populates country widgets. Empty means model.DefaultCountries.
	Countries []model.Country
	// ActionPrefix is prepended to form actions emitted by HTML renderers so
	// the builder can be mounted under a sub-path.
	ActionPrefix string
	// HiddenFields are emitted inside the main form, e.g. a CSRF token.
	HiddenFields map[string]string
}

// CountriesOrDefault returns the configured countries or the built-in list.
func (o RenderOptions) CountriesOrDefault() []model.Country {
	if len(o.Countries) > 0 {
		return o.Countries
	}
	return model.DefaultCountries()
}
