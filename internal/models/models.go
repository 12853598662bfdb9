// package models defines the data model for the playlist exporter
package models

import "strings"

// ArtistSeparator joins artist names for formats that need a single string.
const ArtistSeparator = ", "

// Playlist represents playlist metadata from the remote service.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"track_count"` // Total advertised by the API, informational only
}

// Track represents a single song entry of a playlist.
type Track struct {
	Name    string   `json:"track_name"`
	Artists []string `json:"artist_names"` // API order
	Album   string   `json:"album_name"`
}

// ArtistNames returns the artist list joined with [ArtistSeparator].
func (t Track) ArtistNames() string {
	return strings.Join(t.Artists, ArtistSeparator)
}

// TrackBatch is the ordered result of paginating one playlist.
type TrackBatch []Track

// Len returns the number of tracks in the batch.
func (b TrackBatch) Len() int { return len(b) }

// ExportResult describes a successfully exported playlist.
type ExportResult struct {
	PlaylistID string `json:"playlist_id"`
	Name       string `json:"name"` // Sanitized display name
	TrackCount int    `json:"track_count"`
	Path       string `json:"path"`
}
