// Package models defines the domain records that flow through the playlist export pipeline.
//
// Records are constructed at the remote client boundary and are never mutated afterwards:
//   - [Playlist] : playlist metadata (id, display name, advertised track count)
//   - [Track] : one song with its ordered artist list and album
//   - [TrackBatch] : all tracks of one playlist in API page order
//   - [ExportFormat] : one of markdown, txt, csv, json with its file extension
//   - [ExportResult] : the outcome of exporting one playlist
//   - [BatchReport] : one [BatchEntry] per input of a batch run, in input order
//
// Per-playlist failures inside a batch are recorded as [ExportError] values, which keep the
// offending input and unwrap to the underlying sentinel error from the shared package.
package models
