package services

import "github.com/desertthunder/exportify/internal/models"

// NormalizeItem converts a playlist item into a [models.Track].
//
// It reports false when the item has no track (removed or unavailable songs).
func NormalizeItem(item SpotifyPlaylistItem) (models.Track, bool) {
	if item.Track == nil {
		return models.Track{}, false
	}

	artists := make([]string, 0, len(item.Track.Artists))
	for _, a := range item.Track.Artists {
		artists = append(artists, a.Name)
	}

	return models.Track{
		Name:    item.Track.Name,
		Artists: artists,
		Album:   item.Track.Album.Name,
	}, true
}

// NormalizePage converts a page of items, dropping entries without a track and keeping order.
func NormalizePage(items []SpotifyPlaylistItem) []models.Track {
	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		if track, ok := NormalizeItem(item); ok {
			tracks = append(tracks, track)
		}
	}
	return tracks
}
