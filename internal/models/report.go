package models

import (
	"errors"
	"fmt"
)

// ExportError records why a single playlist of a batch could not be exported.
type ExportError struct {
	Input      string // Raw identifier as supplied by the user
	PlaylistID string // Empty when the identifier could not be parsed
	Err        error
}

func (e *ExportError) Error() string {
	if e.PlaylistID == "" {
		return fmt.Sprintf("%s: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Input, e.PlaylistID, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// BatchEntry is the outcome for one input of a batch run.
//
// Exactly one of Result and Err is set.
type BatchEntry struct {
	Input      string
	PlaylistID string
	Result     *ExportResult
	Err        error
}

// OK reports whether the entry was exported successfully.
func (e BatchEntry) OK() bool { return e.Err == nil && e.Result != nil }

// String renders the entry the way the front ends report it:
//
//	SUCCESS: Playlist 'Name' exported.
//	Total tracks: 12
//	Saved to: out/Name.csv
//
// or a single "FAILED: input: reason" line.
func (e BatchEntry) String() string {
	if !e.OK() {
		return fmt.Sprintf("FAILED: %s: %v", e.Input, e.Cause())
	}
	return fmt.Sprintf("SUCCESS: Playlist '%s' exported.\nTotal tracks: %d\nSaved to: %s", e.Result.Name, e.Result.TrackCount, e.Result.Path)
}

// Cause returns the reason a failed entry could not be exported, without the input prefix.
func (e BatchEntry) Cause() error {
	if e.OK() {
		return nil
	}
	var exportErr *ExportError
	if errors.As(e.Err, &exportErr) {
		return exportErr.Err
	}
	if e.Err == nil {
		return errors.New("no result")
	}
	return e.Err
}

// BatchReport summarizes a batch run. Entries are in input order.
type BatchReport struct {
	RunID     string
	Format    ExportFormat
	OutputDir string
	Entries   []BatchEntry

	ManifestPath string // Empty unless a manifest was requested
}

// Succeeded returns the results of every successful entry in input order.
func (r *BatchReport) Succeeded() []*ExportResult {
	results := make([]*ExportResult, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.OK() {
			results = append(results, e.Result)
		}
	}
	return results
}

// Failed returns the errors of every failed entry in input order.
func (r *BatchReport) Failed() []*ExportError {
	var failures []*ExportError
	for _, e := range r.Entries {
		if e.OK() {
			continue
		}
		var exportErr *ExportError
		if errors.As(e.Err, &exportErr) {
			failures = append(failures, exportErr)
		} else {
			failures = append(failures, &ExportError{Input: e.Input, PlaylistID: e.PlaylistID, Err: e.Err})
		}
	}
	return failures
}

// Err joins every per-entry failure, or returns nil when all entries succeeded.
func (r *BatchReport) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}
