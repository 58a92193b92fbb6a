package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	renderRenderer string
	renderOutput   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a sample form to stdout or a file",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderRenderer, "renderer", "vanilla", "renderer to use (vanilla, tui)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (stdout if empty)")
	RootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := setup("console")
	if err != nil {
		return err
	}

	session, err := newSession(cfg, logging.WithComponent("builder"))
	if err != nil {
		return err
	}
	if err := populateSample(session); err != nil {
		return err
	}

	registry, err := formbuilder.NewRegistry(themeOption(cfg))
	if err != nil {
		return err
	}
	out, _, err := registry.Render(cmd.Context(), renderRenderer, session, renderOptions(cfg))
	if err != nil {
		return err
	}

	if renderOutput == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(renderOutput, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", renderOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", renderOutput)
	return nil
}

// populateSample builds one field of every type, fills some of them and
// submits so the output shows values, errors and a hidden field.
func populateSample(s *builder.Session) error {
	s.AddSection()
	ids := make(map[model.FieldType]string)
	for _, t := range model.FieldTypes() {
		field, err := s.AddField(t)
		if err != nil {
			return err
		}
		ids[t] = field.ID
	}
	for _, option := range []string{"Small", "Medium", "Large"} {
		s.AddOption(ids[model.FieldTypeDropdown], option)
		s.AddOption(ids[model.FieldTypeRadio], option)
		s.AddOption(ids[model.FieldTypeCheckbox], option)
	}

	s.AddSection()
	extra, err := s.AddField(model.FieldTypeText)
	if err != nil {
		return err
	}
	if err := s.SetCondition(extra.ID, ids[model.FieldTypeRadio], `value == "Large"`); err != nil {
		return err
	}

	// Validation failures are part of the sample; they land in Errors.
	_ = s.Change(ids[model.FieldTypeText], "Ada Lovelace")
	_ = s.Change(ids[model.FieldTypeDropdown], "Medium")
	_ = s.Change(ids[model.FieldTypeCheckbox], []string{"Small", "Large"})
	_ = s.Change(ids[model.FieldTypeCountry], "UK")
	_ = s.Change(ids[model.FieldTypeDate], time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC))
	_ = s.Change(ids[model.FieldTypePhone], "12345")
	s.Submit()
	return nil
}
