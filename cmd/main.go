package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/exportify/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "exportify",
		Usage:    "Export Spotify playlists to Markdown, TXT, CSV or JSON",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err := app.Run(ctx, os.Args)
	stop()
	if err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
