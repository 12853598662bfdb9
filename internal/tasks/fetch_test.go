package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/exportify/internal/shared"
	tu "github.com/desertthunder/exportify/internal/testing"
)

func TestFetchAllTracks(t *testing.T) {
	t.Run("Page Boundaries", func(t *testing.T) {
		const pageSize = 100
		tests := []struct {
			n         int
			wantCalls int
		}{
			{0, 1},
			{1, 2},
			{pageSize, 2},
			{pageSize + 1, 3},
			{2 * pageSize, 3},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprintf("N=%d", tt.n), func(t *testing.T) {
				sess := tu.NewMockSession().AddGeneratedPlaylist("pl", "Mix", tt.n)

				tracks, err := FetchAllTracks(context.Background(), sess, "pl", FetchOpts{PageSize: pageSize})
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if tracks.Len() != tt.n {
					t.Errorf("expected %d tracks, got %d", tt.n, tracks.Len())
				}
				if sess.PageCalls != tt.wantCalls {
					t.Errorf("expected %d page requests, got %d", tt.wantCalls, sess.PageCalls)
				}
				for i, offset := range sess.Offsets {
					if offset != i*pageSize {
						t.Errorf("request %d used offset %d, want %d", i, offset, i*pageSize)
					}
				}
				for i, track := range tracks {
					if want := fmt.Sprintf("Track %d", i+1); track.Name != want {
						t.Fatalf("track %d = %q, want %q", i, track.Name, want)
					}
				}
			})
		}
	})

	t.Run("Invalid Page Size Falls Back", func(t *testing.T) {
		for _, size := range []int{0, -5, 101} {
			sess := tu.NewMockSession().AddGeneratedPlaylist("pl", "Mix", 3)
			if _, err := FetchAllTracks(context.Background(), sess, "pl", FetchOpts{PageSize: size}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sess.Limits[0] != shared.MaxPageSize {
				t.Errorf("page size %d: expected limit %d, got %d", size, shared.MaxPageSize, sess.Limits[0])
			}
		}
	})

	t.Run("Skips Null Tracks", func(t *testing.T) {
		items := tu.GenerateItems(3)
		items[1].Track = nil
		sess := tu.NewMockSession().AddPlaylist("pl", "Mix", items...)

		tracks, err := FetchAllTracks(context.Background(), sess, "pl", FetchOpts{PageSize: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tracks.Len() != 2 || tracks[0].Name != "Track 1" || tracks[1].Name != "Track 3" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("Page Cap", func(t *testing.T) {
		sess := tu.NewMockSession()
		sess.Endless = true

		_, err := FetchAllTracks(context.Background(), sess, "pl", FetchOpts{PageSize: 10, MaxPages: 5})
		if !errors.Is(err, shared.ErrPaginationLimit) {
			t.Fatalf("expected ErrPaginationLimit, got %v", err)
		}
		if sess.PageCalls != 6 {
			t.Errorf("expected 6 page requests, got %d", sess.PageCalls)
		}
	})

	t.Run("Exactly At Cap Succeeds", func(t *testing.T) {
		sess := tu.NewMockSession().AddGeneratedPlaylist("pl", "Mix", 50)

		tracks, err := FetchAllTracks(context.Background(), sess, "pl", FetchOpts{PageSize: 10, MaxPages: 5})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tracks.Len() != 50 {
			t.Errorf("expected 50 tracks, got %d", tracks.Len())
		}
	})

	t.Run("Page Error", func(t *testing.T) {
		sess := tu.NewMockSession().AddGeneratedPlaylist("pl", "Mix", 3).FailPages("pl", shared.ErrTransient)

		if _, err := FetchAllTracks(context.Background(), sess, "pl", FetchOpts{}); !errors.Is(err, shared.ErrTransient) {
			t.Errorf("expected ErrTransient, got %v", err)
		}
	})

	t.Run("Page Callback", func(t *testing.T) {
		sess := tu.NewMockSession().AddGeneratedPlaylist("pl", "Mix", 25)

		var pages, last int
		_, err := FetchAllTracks(context.Background(), sess, "pl", FetchOpts{
			PageSize: 10,
			OnPage: func(page, fetched int) {
				pages = page
				last = fetched
			},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pages != 3 || last != 25 {
			t.Errorf("expected 3 pages and 25 tracks, got %d and %d", pages, last)
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		sess := tu.NewMockSession().AddGeneratedPlaylist("pl", "Mix", 3)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := FetchAllTracks(ctx, sess, "pl", FetchOpts{}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if sess.PageCalls != 0 {
			t.Errorf("expected no requests, got %d", sess.PageCalls)
		}
	})
}
