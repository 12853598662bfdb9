package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/exportify/internal/shared"
)

// ExportFormat enumerates the supported output formats.
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "markdown"
	FormatText     ExportFormat = "txt"
	FormatCSV      ExportFormat = "csv"
	FormatJSON     ExportFormat = "json"
)

// Formats lists every supported format in display order.
func Formats() []ExportFormat {
	return []ExportFormat{FormatMarkdown, FormatText, FormatCSV, FormatJSON}
}

// ParseFormat converts a user-supplied selector into an [ExportFormat].
//
// Matching ignores case and surrounding whitespace. Anything else is rejected with [shared.ErrUnsupportedFormat].
func ParseFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q (must be one of %s)", shared.ErrUnsupportedFormat, s, formatList())
	}
	return f, nil
}

// Valid reports whether f is one of the supported formats.
func (f ExportFormat) Valid() bool {
	switch f {
	case FormatMarkdown, FormatText, FormatCSV, FormatJSON:
		return true
	default:
		return false
	}
}

// Extension returns the file extension (without the dot) for f, or "" when f is not valid.
func (f ExportFormat) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return ""
	}
}

func (f ExportFormat) String() string { return string(f) }

func formatList() string {
	names := make([]string, 0, 4)
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
