// package formatter serializes track batches to the supported export formats (Markdown, plain text, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/shared"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Track Name", "Artist(s)", "Album Name"}

// jsonTrack is the JSON export record. Artists are always encoded as a list.
type jsonTrack struct {
	TrackName   string   `json:"track_name"`
	ArtistNames []string `json:"artist_names"`
	AlbumName   string   `json:"album_name"`
}

// Serialize renders tracks in the given format. The playlist name is only used by Markdown.
func Serialize(format models.ExportFormat, name string, tracks []models.Track) ([]byte, error) {
	switch format {
	case models.FormatMarkdown:
		return ExportToMarkdown(name, tracks), nil
	case models.FormatText:
		return ExportToText(tracks), nil
	case models.FormatCSV:
		return ExportToCSV(tracks)
	case models.FormatJSON:
		return ExportToJSON(tracks)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, format)
	}
}

// ExportToMarkdown renders a "## name" heading, a rule and one bullet per track.
//
// Lines are joined with "\n" and there is no trailing newline.
func ExportToMarkdown(name string, tracks []models.Track) []byte {
	lines := make([]string, 0, len(tracks)+2)
	lines = append(lines, "## "+name, "---")
	for _, track := range tracks {
		lines = append(lines, fmt.Sprintf("- **%s** : *%s*", track.Name, track.ArtistNames()))
	}
	return []byte(strings.Join(lines, "\n"))
}

// ExportToText renders one "track - artists" line per track with no trailing newline.
//
// An empty batch produces an empty file.
func ExportToText(tracks []models.Track) []byte {
	lines := make([]string, 0, len(tracks))
	for _, track := range tracks {
		lines = append(lines, fmt.Sprintf("%s - %s", track.Name, track.ArtistNames()))
	}
	return []byte(strings.Join(lines, "\n"))
}

// ExportToCSV renders a header row and one row per track with CRLF line endings.
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true

	if err := writer.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		if err := writer.Write([]string{track.Name, track.ArtistNames(), track.Album}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders an indented array of {track_name, artist_names, album_name} objects.
func ExportToJSON(tracks []models.Track) ([]byte, error) {
	records := make([]jsonTrack, 0, len(tracks))
	for _, track := range tracks {
		artists := track.Artists
		if artists == nil {
			artists = []string{}
		}
		records = append(records, jsonTrack{TrackName: track.Name, ArtistNames: artists, AlbumName: track.Album})
	}

	data, err := shared.MarshalJSON(records, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}
