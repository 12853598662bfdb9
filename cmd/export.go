package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/desertthunder/exportify/internal/formatter"
	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
	"github.com/desertthunder/exportify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// exportRequest is what the export command was asked to do, after flags and prompts.
type exportRequest struct {
	playlist  string
	batchFile string
	format    string
}

// Export exports a single playlist or a batch file.
//
// The format is validated before authenticating, and authentication happens before any export.
// Single mode stops at the first error; batch mode records failures per entry and keeps going.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	req := exportRequest{
		playlist:  cmd.StringArg("playlist"),
		batchFile: cmd.String("batch"),
		format:    cmd.String("format"),
	}

	if req.playlist != "" && req.batchFile != "" {
		return fmt.Errorf("%w: pass either a playlist or --batch, not both", shared.ErrInvalidArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if req.format == "" {
		req.format = config.Output.DefaultFormat
	}

	if req.playlist == "" && req.batchFile == "" {
		if !r.interactive {
			return fmt.Errorf("%w: playlist URL or --batch file", shared.ErrMissingArgument)
		}
		if err := promptExport(&req, !cmd.IsSet("format")); err != nil {
			return err
		}
	}

	format, err := models.ParseFormat(req.format)
	if err != nil {
		return err
	}

	sess, err := r.connect(ctx, config, r.logger)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		OutputDir: config.Output.Dir,
		Format:    format,
		Fetch:     fetchOpts(config),
		Manifest:  cmd.Bool("manifest"),
	}
	engine := r.engineFor(r.logger)

	if req.batchFile != "" {
		return r.exportBatch(ctx, engine, sess, req.batchFile, opts, cmd.Bool("json"))
	}
	return r.exportSingle(ctx, engine, sess, req.playlist, opts, cmd.Bool("json"))
}

func (r *Runner) exportSingle(
	ctx context.Context,
	engine tasks.ExportEngine,
	sess services.Session,
	input string,
	opts tasks.ExportOpts,
	asJSON bool,
) error {
	id, err := services.ParsePlaylistID(input)
	if err != nil {
		return fmt.Errorf("%w: %q", err, input)
	}

	var result *models.ExportResult
	run := func(ctx context.Context) error {
		var err error
		result, err = engine.ExportOne(ctx, sess, id, opts)
		return err
	}

	if r.interactive && !asJSON {
		err = spinner.New().Title("Exporting playlist...").Context(ctx).ActionWithErr(run).Run()
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}

	report := &models.BatchReport{
		Format:    opts.Format,
		OutputDir: shared.ExpandPath(opts.OutputDir),
		Entries:   []models.BatchEntry{{Input: input, PlaylistID: id, Result: result}},
	}
	if opts.Manifest {
		if report.ManifestPath, err = formatter.WriteManifest(report.OutputDir, report); err != nil {
			return err
		}
	}

	if asJSON {
		return r.writeJSON(result, true)
	}

	r.writePlain("%s\n", report.Entries[0])
	if report.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", report.ManifestPath)
	}
	return nil
}

func (r *Runner) exportBatch(
	ctx context.Context,
	engine tasks.ExportEngine,
	sess services.Session,
	batchFile string,
	opts tasks.ExportOpts,
	asJSON bool,
) error {
	inputs, err := readBatchFile(batchFile)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no playlists listed in %s", shared.ErrMissingArgument, batchFile)
	}

	r.logger.Info("starting batch export", "file", batchFile, "playlists", len(inputs), "format", opts.Format)

	progress := make(chan tasks.ProgressUpdate, len(inputs)*4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == tasks.ExportPlaylist || update.Phase == tasks.ParseInput {
				r.logger.Debug(update.Message)
			}
		}
	}()

	report, err := engine.ExportMany(ctx, progress, sess, inputs, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if asJSON {
		m := formatter.NewManifest(report, time.Now())
		if err := r.writeJSON(m, true); err != nil {
			return err
		}
	} else {
		for _, entry := range report.Entries {
			r.writePlain("\n%s\n", entry)
		}
		r.writePlainln("Exported %d of %d playlists to %s", len(report.Succeeded()), len(report.Entries), report.OutputDir)
		if report.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", report.ManifestPath)
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d playlists failed: %w", len(failed), len(report.Entries), report.Err())
	}
	return nil
}

func readBatchFile(path string) ([]string, error) {
	f, err := os.Open(shared.ExpandPath(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: batch file not found: %s", shared.ErrInvalidArgument, path)
		}
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	return services.ReadIdentifiers(f)
}

// promptExport asks for the export target when none was given on the command line.
func promptExport(req *exportRequest, askFormat bool) error {
	var batch bool
	if err := huh.NewConfirm().
		Title("Batch mode?").
		Description("Export every playlist listed in a file").
		Value(&batch).
		Run(); err != nil {
		return err
	}

	if batch {
		if err := huh.NewInput().
			Title("Enter the batch file path").
			Placeholder("batch_playlists.txt").
			Validate(func(s string) error {
				if _, err := os.Stat(shared.ExpandPath(s)); err != nil {
					return errors.New("batch file not found")
				}
				return nil
			}).
			Value(&req.batchFile).
			Run(); err != nil {
			return err
		}
	} else {
		if err := huh.NewInput().
			Title("Enter the Spotify playlist URL").
			Placeholder("https://open.spotify.com/playlist/...").
			Validate(func(s string) error {
				_, err := services.ParsePlaylistID(s)
				return err
			}).
			Value(&req.playlist).
			Run(); err != nil {
			return err
		}
	}

	if !askFormat {
		return nil
	}
	return huh.NewSelect[string]().
		Title("Choose the export format").
		Options(formatOptions()...).
		Value(&req.format).
		Run()
}

func formatOptions() []huh.Option[string] {
	formats := models.Formats()
	options := make([]huh.Option[string], len(formats))
	for i, f := range formats {
		options[i] = huh.NewOption(f.String(), f.String())
	}
	return options
}
