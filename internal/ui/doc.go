// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through a single batch export:
//  1. [InputView] : Paste playlist URLs or IDs, one per line
//  2. [FormatView] : Pick the export format
//  3. [ExportView] : Watch per-playlist progress while the batch runs
//  4. [ResultView] : Review one SUCCESS/FAILED line per input
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ExportEngine, providing non-blocking status reporting during exports.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
