// Package tasks runs the playlist export pipeline with real-time progress reporting.
//
// # Core Operations
//
// The [ExportEngine] interface defines two operations:
//
//  1. [ExportEngine.ExportOne] : export a single playlist
//     - Validates the format before any request
//     - Fetches metadata, then every page of tracks via [FetchAllTracks]
//     - Serializes with the formatter package and writes {dir}/{name}.{ext} atomically
//
//  2. [ExportEngine.ExportMany] : export a batch of playlist URLs or IDs
//     - Parses each input separately so a bad line only fails its own entry
//     - Records failures in a [models.BatchReport] and continues
//     - Optionally writes export_manifest.json next to the exports
//
// # Pagination
//
// [FetchAllTracks] requests pages of up to 100 items at increasing offsets until an empty page is
// returned. A page cap ([FetchOpts.MaxPages]) turns a misbehaving API into [shared.ErrPaginationLimit]
// instead of an endless loop.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default, so a slow or absent reader drops updates instead of stalling the export.
//
// # Sessions
//
// The [services.Session] is passed to every call; the engine itself holds only a logger.
package tasks
