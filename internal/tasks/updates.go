package tasks

import (
	"fmt"

	"github.com/desertthunder/exportify/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current input number within the batch
	Total   int    // Total inputs in the batch
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ParseInput Phase = iota
	FetchMeta
	FetchTracks
	WriteExport
	ExportPlaylist
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case ParseInput:
		return "parse_input"
	case FetchMeta:
		return "fetch_meta"
	case FetchTracks:
		return "fetch_tracks"
	case WriteExport:
		return "write_export"
	case ExportPlaylist:
		return "export_playlist"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func parseFailedUpdate(step, total int, input string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseInput,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, input, err),
	}
}

func fetchMetaUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMeta,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching playlist %s...", step, total, id),
	}
}

func fetchTracksUpdate(step, total int, name string, page, fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: page %d (%d tracks)", step, total, name, page, fetched),
		Data:    fetched,
	}
}

func writeExportUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Writing %s...", step, total, path),
	}
}

func exportCompletedUpdate(step, total int, res *models.ExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, res.Name, res.TrackCount),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, input string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, input, err),
		Data:    err,
	}
}

func manifestUpdate(total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Manifest written to %s", path),
		Data:    path,
	}
}
