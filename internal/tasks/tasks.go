// package tasks implements the playlist export pipeline.
//
// The core abstraction is ExportEngine, which exports one playlist or a batch of playlists through a [services.Session].
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/services"
)

// ExportEngine defines the export operations used by the front ends.
type ExportEngine interface {
	// ExportOne fetches a single playlist and writes it to opts.OutputDir in opts.Format.
	ExportOne(ctx context.Context, sess services.Session, playlistID string, opts ExportOpts) (*models.ExportResult, error)

	// ExportMany exports every input in order, recording per-input failures in the report instead of stopping.
	ExportMany(ctx context.Context, progress chan<- ProgressUpdate, sess services.Session, inputs []string, opts ExportOpts) (*models.BatchReport, error)
}

// PlaylistEngine implements [ExportEngine].
type PlaylistEngine struct {
	logger *log.Logger
}

var _ ExportEngine = (*PlaylistEngine)(nil)

// NewPlaylistEngine creates a new PlaylistEngine. A nil logger discards output.
func NewPlaylistEngine(logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PlaylistEngine{logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
