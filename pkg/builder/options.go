package builder

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Option configures a Session.
type Option func(*Session)

// WithIDGenerator overrides the default sequence generator.
func WithIDGenerator(gen model.IDGenerator) Option {
	return func(s *Session) {
		if gen != nil {
			s.ids = gen
		}
	}
}

// WithEvaluator installs the visibility strategy. The default reports every
// item as visible.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Session) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithVisibilityExtras exposes caller context (flags, roles) to conditions
// under the `extras.` prefix.
func WithVisibilityExtras(extras map[string]any) Option {
	return func(s *Session) {
		s.extras = extras
	}
}

// WithLogger attaches a logger; sessions are silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}
