package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Build and fill a form interactively in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	RootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := setup("console")
	if err != nil {
		return err
	}

	session, err := newSession(cfg, logging.WithComponent("builder"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	b := tui.NewBuilder(session,
		tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
		tui.WithCountries(cfg.Countries),
		tui.WithTitle(cfg.Title),
		tui.WithLogger(logging.WithComponent("tui")),
	)
	err = b.Run(ctx)
	if errors.Is(err, tui.ErrAborted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
