package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/internal/config"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

var (
	configPath string
	logLevel   string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "formbuilder [command] [flags]",
	Short:         "Build dynamic forms with typed fields and validation",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads config, applies flag overrides and configures logging. format
// overrides the configured log format when non-empty.
func setup(format string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if format != "" {
		cfg.Log.Format = format
	}
	if err := logging.Configure(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	}); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newSession(cfg config.Config, logger zerolog.Logger) (*builder.Session, error) {
	ids, err := model.NewIDGenerator(cfg.IDs)
	if err != nil {
		return nil, err
	}
	var evaluator visibility.Evaluator = visibility.Always
	if strings.EqualFold(cfg.Visibility, config.VisibilityExpr) {
		evaluator = expr.New()
	}
	return builder.New(
		builder.WithIDGenerator(ids),
		builder.WithEvaluator(evaluator),
		builder.WithLogger(logger),
	), nil
}

func renderOptions(cfg config.Config) render.RenderOptions {
	return render.RenderOptions{
		Title:     cfg.Title,
		Countries: cfg.Countries,
	}
}

// themeOption layers configured tokens over the built-in manifest.
func themeOption(cfg config.Config) vanilla.Option {
	manifest := vanilla.DefaultManifest()
	for key, value := range cfg.Theme.Tokens {
		manifest.Tokens[key] = value
	}
	return vanilla.WithTheme(manifest, cfg.Theme.Variant)
}
