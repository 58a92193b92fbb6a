package tui

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Option configures the interactive Builder.
type Option func(*Builder)

// WithPromptDriver overrides the prompt driver used by the builder.
func WithPromptDriver(driver PromptDriver) Option {
	return func(b *Builder) {
		if driver != nil {
			b.driver = driver
		}
	}
}

// WithCountries replaces the country list offered by country fields.
func WithCountries(countries []model.Country) Option {
	return func(b *Builder) {
		if len(countries) > 0 {
			b.countries = countries
		}
	}
}

// WithTitle sets the heading shown in previews.
func WithTitle(title string) Option {
	return func(b *Builder) {
		b.title = title
	}
}

// WithLogger attaches a logger for prompt failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}
