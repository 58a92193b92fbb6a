package builder

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// refreshVisibility re-evaluates every section and field independently. An
// item whose condition fails to evaluate keeps its previous visibility; all
// evaluation errors are joined and returned.
func (s *Session) refreshVisibility() error {
	var errs []error
	for i := range s.sections {
		section := &s.sections[i]
		visible, err := s.evaluate(section.DependsOn, section.Condition)
		if err != nil {
			errs = append(errs, fmt.Errorf("builder: section %s visibility: %w", section.ID, err))
		} else {
			section.Visible = visible
		}

		for j := range section.Children {
			field := &section.Children[j]
			visible, err := s.evaluate(field.DependsOn, field.Condition)
			if err != nil {
				errs = append(errs, fmt.Errorf("builder: field %s visibility: %w", field.ID, err))
				continue
			}
			field.Visible = visible
		}
	}

	if len(errs) > 0 {
		s.logger.Warn().Int("failures", len(errs)).Msg("visibility evaluation failed")
	}
	return errors.Join(errs...)
}

func (s *Session) evaluate(dependsOn, condition string) (bool, error) {
	if dependsOn == "" {
		return true, nil
	}
	return s.evaluator.Eval(dependsOn, condition, visibility.Context{
		Value:  s.formData[dependsOn],
		Values: s.formData,
		Extras: s.extras,
	})
}
