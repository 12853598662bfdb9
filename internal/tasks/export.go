package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/exportify/internal/formatter"
	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
)

// ExportOpts contains configuration for playlist exports.
type ExportOpts struct {
	OutputDir string              // Target directory, created if missing (default: current directory)
	Format    models.ExportFormat // markdown, txt, csv or json
	Fetch     FetchOpts
	Manifest  bool // Write export_manifest.json after a batch
}

func (o ExportOpts) dir() string {
	if strings.TrimSpace(o.OutputDir) == "" {
		return "."
	}
	return shared.ExpandPath(o.OutputDir)
}

// ExportOne exports a single playlist to {OutputDir}/{sanitized name}.{ext}.
//
// The format is validated before any request is made. A playlist whose sanitized name is blank is
// written under its ID. An existing file with the same name is replaced.
func (e *PlaylistEngine) ExportOne(ctx context.Context, sess services.Session, playlistID string, opts ExportOpts) (*models.ExportResult, error) {
	format, err := models.ParseFormat(opts.Format.String())
	if err != nil {
		return nil, err
	}
	opts.Format = format
	return e.export(ctx, nil, sess, playlistID, opts, 1, 1)
}

func (e *PlaylistEngine) export(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	sess services.Session,
	playlistID string,
	opts ExportOpts,
	step, total int,
) (*models.ExportResult, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: no session", shared.ErrNotAuthenticated)
	}

	e.sendProgress(progress, fetchMetaUpdate(step, total, playlistID))
	meta, err := sess.PlaylistMeta(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	name := shared.SanitizeFilename(meta.Name)
	if strings.TrimSpace(name) == "" {
		name = shared.SanitizeFilename(playlistID)
	}

	fetch := opts.Fetch
	onPage := fetch.OnPage
	fetch.OnPage = func(page, fetched int) {
		e.sendProgress(progress, fetchTracksUpdate(step, total, name, page, fetched))
		if onPage != nil {
			onPage(page, fetched)
		}
	}

	tracks, err := FetchAllTracks(ctx, sess, playlistID, fetch)
	if err != nil {
		return nil, err
	}

	dir := opts.dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := formatter.Serialize(opts.Format, name, tracks)
	if err != nil {
		return nil, err
	}

	path := formatter.ExportPath(dir, name, opts.Format.Extension())
	e.sendProgress(progress, writeExportUpdate(step, total, path))
	if err := formatter.WriteFile(path, data); err != nil {
		return nil, err
	}

	e.logger.Info("exported playlist", "playlist", playlistID, "name", name, "tracks", tracks.Len(), "path", path)

	return &models.ExportResult{
		PlaylistID: playlistID,
		Name:       name,
		TrackCount: tracks.Len(),
		Path:       path,
	}, nil
}
