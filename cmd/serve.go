package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/exportify/internal/server"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
	"github.com/desertthunder/exportify/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the local export page until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = int(cmd.Int("port"))
	}

	format, err := resolveFormat(cmd, config)
	if err != nil {
		return err
	}

	connect := func(ctx context.Context) (services.Session, error) {
		return r.connect(ctx, config, r.logger)
	}
	handler, err := web.NewHandler(r.engineFor(r.logger), connect, web.Options{
		OutputDir:     config.Output.Dir,
		DefaultFormat: format,
		Fetch:         fetchOpts(config),
		Manifest:      cmd.Bool("manifest"),
	}, r.logger)
	if err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Mount(handler)

	ln, err := server.Listen(config.Server.Addr())
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s/", ln.Addr())
	r.writePlain("→ Serving Exportify at %s (Ctrl+C to stop)\n", url)

	if config.Server.OpenBrowser && !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
			r.writePlain("⚠ Could not open browser automatically. Open %s yourself.\n", url)
		}
	}

	return server.ServeListener(ctx, ln, router, r.logger)
}
