package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder"
	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/internal/server"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the builder over HTTP (HTML page and JSON API)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := setup("")
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	session, err := newSession(cfg, logging.WithComponent("builder"))
	if err != nil {
		return err
	}
	renderer, err := vanilla.New(themeOption(cfg))
	if err != nil {
		return err
	}

	srv, err := server.New(session,
		server.WithRenderer(renderer),
		server.WithRenderOptions(renderOptions(cfg)),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateWindow),
		server.WithAssets(formbuilder.AssetsFS()),
		server.WithMetrics(cfg.Server.Metrics),
		server.WithLogger(logging.WithComponent("http")),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
