package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// Renderer draws a FormView as styled terminal text.
type Renderer struct{}

var _ render.Renderer = Renderer{}

func (Renderer) Name() string {
	return "tui"
}

func (Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (Renderer) Render(ctx context.Context, view render.FormView, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := options.Title
	if title == "" {
		title = "Dynamic Form Builder"
	}
	blocks := []string{styles.Title.Render(title)}
	if options.Warning != "" {
		blocks = append(blocks, styles.Warning.Render(options.Warning))
	}

	sections := view.VisibleSections()
	if len(sections) == 0 {
		blocks = append(blocks, styles.Muted.Render("No sections yet."))
	}
	countries := options.CountriesOrDefault()
	for _, section := range sections {
		blocks = append(blocks, renderSection(section, countries))
	}

	if view.HasSubmission {
		blocks = append(blocks, styles.Result.Render("Submitted Data\n"+view.SubmittedJSON))
	}

	return []byte(lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"), nil
}

func renderSection(section render.SectionView, countries []model.Country) string {
	header := section.Label
	box := styles.Section
	if section.Selected {
		header += " (selected)"
		box = styles.Selected
	}

	lines := []string{styles.Label.Render(header)}
	if len(section.Fields) == 0 {
		lines = append(lines, styles.Muted.Render("No fields yet."))
	}
	for _, field := range section.Fields {
		line := fmt.Sprintf("%s %s", styles.Label.Render(field.Label+":"), fieldValue(field, countries))
		lines = append(lines, line)
		if len(field.Options) > 0 {
			lines = append(lines, styles.Muted.Render("  options: "+strings.Join(field.Options, ", ")))
		}
		if field.Error != "" {
			lines = append(lines, styles.Error.Render("  "+field.Error))
		}
	}
	return box.Render(strings.Join(lines, "\n"))
}

func fieldValue(field render.FieldView, countries []model.Country) string {
	if field.Display == "" {
		return styles.Muted.Render("(empty)")
	}
	if field.Type == model.FieldTypeCountry {
		for _, country := range countries {
			if country.Code == field.Display {
				return styles.Value.Render(country.Name)
			}
		}
	}
	return styles.Value.Render(field.Display)
}
