package services

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/exportify/internal/shared"
)

const spotifyURIPrefix = "spotify:playlist:"

// ParsePlaylistID extracts the playlist ID from a share URL, a spotify:playlist: URI, or a bare ID.
//
// The last path segment is taken and anything after "?" is dropped, so
// "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc" yields "37i9dQZF1DXcBWIGoYBM5M".
func ParsePlaylistID(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if rest, ok := strings.CutPrefix(trimmed, spotifyURIPrefix); ok {
		trimmed = rest
	}

	segments := strings.Split(trimmed, "/")
	last := segments[len(segments)-1]
	id, _, _ := strings.Cut(last, "?")
	id = strings.TrimSpace(id)

	if id == "" {
		return "", shared.ErrParse
	}
	return id, nil
}

// ReadIdentifiers reads one playlist identifier per line from r.
//
// Lines are trimmed and blank lines skipped. Identifiers are returned unparsed.
func ReadIdentifiers(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identifiers: %w", err)
	}
	return inputs, nil
}

// SplitIdentifiers is [ReadIdentifiers] over a string, as submitted by a form field.
func SplitIdentifiers(s string) []string {
	inputs, _ := ReadIdentifiers(strings.NewReader(s))
	return inputs
}
