package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/exportify/internal/formatter"
	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
)

// ExportMany exports each input sequentially and reports one entry per input, in input order.
//
// Inputs may be share URLs or bare IDs and are parsed one at a time, so an unparseable line only fails its own entry.
// Any failure while exporting an input is recorded as a [models.ExportError] and the batch moves on.
// The returned error is reserved for problems that affect the whole batch: an unsupported format
// (checked before any request) or a manifest that could not be written.
func (e *PlaylistEngine) ExportMany(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	sess services.Session,
	inputs []string,
	opts ExportOpts,
) (*models.BatchReport, error) {
	format, err := models.ParseFormat(opts.Format.String())
	if err != nil {
		return nil, err
	}
	opts.Format = format

	report := &models.BatchReport{
		RunID:     shared.GenerateID(),
		Format:    format,
		OutputDir: opts.dir(),
		Entries:   make([]models.BatchEntry, 0, len(inputs)),
	}
	logger := e.logger.With("run", report.RunID)
	total := len(inputs)

	for i, input := range inputs {
		step := i + 1
		entry := models.BatchEntry{Input: input}

		if err := ctx.Err(); err != nil {
			entry.Err = &models.ExportError{Input: input, Err: err}
			report.Entries = append(report.Entries, entry)
			e.sendProgress(progress, exportFailedUpdate(step, total, input, err))
			continue
		}

		id, err := services.ParsePlaylistID(input)
		if err != nil {
			logger.Warn("skipping input", "input", input, "error", err)
			entry.Err = &models.ExportError{Input: input, Err: err}
			report.Entries = append(report.Entries, entry)
			e.sendProgress(progress, parseFailedUpdate(step, total, input, err))
			continue
		}
		entry.PlaylistID = id

		res, err := e.export(ctx, progress, sess, id, opts, step, total)
		if err != nil {
			logger.Error("export failed", "playlist", id, "error", err)
			entry.Err = &models.ExportError{Input: input, PlaylistID: id, Err: err}
			report.Entries = append(report.Entries, entry)
			e.sendProgress(progress, exportFailedUpdate(step, total, input, err))
			continue
		}

		entry.Result = res
		report.Entries = append(report.Entries, entry)
		e.sendProgress(progress, exportCompletedUpdate(step, total, res))
	}

	logger.Info("batch finished", "succeeded", len(report.Succeeded()), "failed", len(report.Failed()))

	if opts.Manifest {
		if err := os.MkdirAll(report.OutputDir, 0755); err != nil {
			return report, fmt.Errorf("failed to create output directory: %w", err)
		}
		path, err := formatter.WriteManifest(report.OutputDir, report)
		if err != nil {
			return report, fmt.Errorf("export completed but failed to write manifest: %w", err)
		}
		report.ManifestPath = path
		e.sendProgress(progress, manifestUpdate(total, path))
	}

	return report, nil
}
