// package services defines the remote session used by the export pipeline
//
// Spotify Web API
package services

import (
	"context"

	"github.com/desertthunder/exportify/internal/models"
)

// Session is an authenticated connection to the playlist API.
//
// It is created once per run and passed explicitly to every pipeline call.
type Session interface {
	// PlaylistMeta retrieves the display name and advertised size of a playlist.
	PlaylistMeta(ctx context.Context, playlistID string) (*models.Playlist, error)

	// TracksPage retrieves one page of playlist items. An empty result means there are no more items.
	TracksPage(ctx context.Context, playlistID string, offset, limit int) ([]SpotifyPlaylistItem, error)
}

var _ Session = (*SpotifyService)(nil)
