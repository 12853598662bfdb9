package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
)

// DefaultMaxPages bounds pagination when [FetchOpts.MaxPages] is not set.
const DefaultMaxPages = 1000

// FetchOpts controls pagination.
type FetchOpts struct {
	PageSize int                     // Items per request, 1..100 (default: 100)
	MaxPages int                     // Non-empty pages allowed before giving up (default: 1000)
	OnPage   func(page, fetched int) // Called after each non-empty page with the running track count
}

func (o FetchOpts) pageSize() int {
	if o.PageSize < 1 || o.PageSize > shared.MaxPageSize {
		return shared.MaxPageSize
	}
	return o.PageSize
}

func (o FetchOpts) maxPages() int {
	if o.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return o.MaxPages
}

// FetchAllTracks requests pages at offsets 0, P, 2P, ... until the API returns an empty page and
// returns the normalized tracks in page order. Items without a track are skipped.
//
// A playlist with N items takes ceil(N/P)+1 requests. If more than MaxPages pages contain items
// the fetch fails with [shared.ErrPaginationLimit].
func FetchAllTracks(ctx context.Context, sess services.Session, playlistID string, opts FetchOpts) (models.TrackBatch, error) {
	size := opts.pageSize()
	limit := opts.maxPages()
	tracks := models.TrackBatch{}

	for page, offset := 0, 0; ; page, offset = page+1, offset+size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := sess.TracksPage(ctx, playlistID, offset, size)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return tracks, nil
		}
		if page >= limit {
			return nil, fmt.Errorf("%w: playlist %s has more than %d pages of %d", shared.ErrPaginationLimit, playlistID, limit, size)
		}

		tracks = append(tracks, services.NormalizePage(items)...)
		if opts.OnPage != nil {
			opts.OnPage(page+1, len(tracks))
		}
	}
}
