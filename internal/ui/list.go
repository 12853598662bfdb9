package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/exportify/internal/models"
)

var _ list.DefaultItem = formatItem{}

var formatDescriptions = map[models.ExportFormat]string{
	models.FormatMarkdown: "Heading plus one bullet per track",
	models.FormatText:     "One \"Track - Artists\" line per track",
	models.FormatCSV:      "Track Name, Artist(s), Album Name columns",
	models.FormatJSON:     "Array of track objects",
}

// formatItem wraps [models.ExportFormat] to implement [list.Item].
type formatItem struct {
	format models.ExportFormat
}

func (i formatItem) FilterValue() string { return i.format.String() }
func (i formatItem) Title() string       { return i.format.String() + " (." + i.format.Extension() + ")" }
func (i formatItem) Description() string { return formatDescriptions[i.format] }

func formatItems() []list.Item {
	formats := models.Formats()
	items := make([]list.Item, len(formats))
	for i, f := range formats {
		items[i] = formatItem{format: f}
	}
	return items
}
