package formatter

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/shared"
)

// ManifestFilename is the name of the batch manifest written next to the exports.
const ManifestFilename = "export_manifest.json"

// Manifest records the outcome of a batch run.
type Manifest struct {
	RunID     string          `json:"run_id"`
	CreatedAt time.Time       `json:"created_at"`
	Format    string          `json:"format"`
	OutputDir string          `json:"output_dir"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Exports   []ManifestEntry `json:"exports"`
}

// ManifestEntry is one input of the batch.
type ManifestEntry struct {
	Input      string `json:"input"`
	PlaylistID string `json:"playlist_id,omitempty"`
	Name       string `json:"name,omitempty"`
	TrackCount int    `json:"track_count"`
	Path       string `json:"path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewManifest builds a [Manifest] from a batch report.
func NewManifest(report *models.BatchReport, createdAt time.Time) Manifest {
	m := Manifest{
		RunID:     report.RunID,
		CreatedAt: createdAt.UTC(),
		Format:    report.Format.String(),
		OutputDir: report.OutputDir,
		Exports:   make([]ManifestEntry, 0, len(report.Entries)),
	}

	for _, e := range report.Entries {
		entry := ManifestEntry{Input: e.Input, PlaylistID: e.PlaylistID}
		if e.OK() {
			entry.Name = e.Result.Name
			entry.TrackCount = e.Result.TrackCount
			entry.Path = e.Result.Path
			m.Succeeded++
		} else {
			entry.Error = e.Cause().Error()
			m.Failed++
		}
		m.Exports = append(m.Exports, entry)
	}
	return m
}

// WriteManifest writes export_manifest.json for report into dir and returns its path.
func WriteManifest(dir string, report *models.BatchReport) (string, error) {
	if report.RunID == "" {
		report.RunID = shared.GenerateID()
	}

	data, err := shared.MarshalJSON(NewManifest(report, time.Now()), true)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestFilename)
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
