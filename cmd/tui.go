package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/exportify/internal/shared"
	"github.com/desertthunder/exportify/internal/tasks"
	"github.com/desertthunder/exportify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist export.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := resolveFormat(cmd, config)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(config.Log.Level))

	r.writePlain("→ Authenticating with Spotify...\n")
	sess, err := r.connect(ctx, config, fileLogger)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, sess, r.engineFor(fileLogger), tasks.ExportOpts{
		OutputDir: config.Output.Dir,
		Format:    format,
		Fetch:     fetchOpts(config),
		Manifest:  cmd.Bool("manifest"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if report := model.Report(); report != nil {
		r.writePlain("Exported %d of %d playlists to %s\n", len(report.Succeeded()), len(report.Entries), report.OutputDir)
	}
	return nil
}
