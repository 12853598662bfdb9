// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/exportify/internal/models"
	"github.com/desertthunder/exportify/internal/services"
	"github.com/desertthunder/exportify/internal/shared"
)

// MockSession is an in-memory test double for [services.Session] that counts calls.
type MockSession struct {
	mu        sync.Mutex
	playlists map[string]*models.Playlist
	items     map[string][]services.SpotifyPlaylistItem
	metaErrs  map[string]error
	pageErrs  map[string]error

	// Endless makes every playlist return full pages forever.
	Endless bool

	MetaCalls int
	PageCalls int
	Offsets   []int
	Limits    []int
}

func NewMockSession() *MockSession {
	return &MockSession{
		playlists: make(map[string]*models.Playlist),
		items:     make(map[string][]services.SpotifyPlaylistItem),
		metaErrs:  make(map[string]error),
		pageErrs:  make(map[string]error),
	}
}

// AddPlaylist registers a playlist with the given items.
func (m *MockSession) AddPlaylist(id, name string, items ...services.SpotifyPlaylistItem) *MockSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlists[id] = &models.Playlist{ID: id, Name: name, TrackCount: len(items)}
	m.items[id] = items
	return m
}

// AddGeneratedPlaylist registers a playlist with n tracks named "Track 1".."Track n".
func (m *MockSession) AddGeneratedPlaylist(id, name string, n int) *MockSession {
	return m.AddPlaylist(id, name, GenerateItems(n)...)
}

// FailMeta makes PlaylistMeta return err for id.
func (m *MockSession) FailMeta(id string, err error) *MockSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metaErrs[id] = err
	return m
}

// FailPages makes TracksPage return err for id.
func (m *MockSession) FailPages(id string, err error) *MockSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageErrs[id] = err
	return m
}

func (m *MockSession) PlaylistMeta(ctx context.Context, playlistID string) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MetaCalls++

	if err, ok := m.metaErrs[playlistID]; ok {
		return nil, err
	}
	p, ok := m.playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	playlist := *p
	return &playlist, nil
}

func (m *MockSession) TracksPage(ctx context.Context, playlistID string, offset, limit int) ([]services.SpotifyPlaylistItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PageCalls++
	m.Offsets = append(m.Offsets, offset)
	m.Limits = append(m.Limits, limit)

	if err, ok := m.pageErrs[playlistID]; ok {
		return nil, err
	}
	if m.Endless {
		return GenerateItems(limit), nil
	}

	items, ok := m.items[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	if offset >= len(items) {
		return []services.SpotifyPlaylistItem{}, nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end], nil
}

// Calls returns the total number of remote calls made.
func (m *MockSession) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MetaCalls + m.PageCalls
}

// GenerateItems builds n playlist items with one or two artists each.
func GenerateItems(n int) []services.SpotifyPlaylistItem {
	items := make([]services.SpotifyPlaylistItem, 0, n)
	for i := 1; i <= n; i++ {
		artists := []services.SpotifyArtist{{Name: fmt.Sprintf("Artist %d", i)}}
		if i%2 == 0 {
			artists = append(artists, services.SpotifyArtist{Name: "Featured"})
		}
		items = append(items, services.SpotifyPlaylistItem{Track: &services.SpotifyTrack{
			Name:    fmt.Sprintf("Track %d", i),
			Artists: artists,
			Album:   services.SpotifyAlbum{Name: fmt.Sprintf("Album %d", i)},
		}})
	}
	return items
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
