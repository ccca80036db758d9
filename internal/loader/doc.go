// Package loader reads the sightings data file.
//
// # Overview
//
// Loader.Load reads the configured JSON file, checks its shape and returns
// the typed records. There is no cache: every call goes back to disk, so the
// file on disk is the only source of truth and edits are visible on the next
// request.
//
// # File Format
//
//	{ "sightings": [ { "species": "...", "habitat": "...", "date": "...", ... } ] }
//
// # Error Model
//
// Failures are returned as *Error carrying a Kind:
//   - NotFound:      the file does not exist.
//   - MalformedData: the contents are not valid JSON.
//   - InvalidSchema: valid JSON of the wrong shape (no "sightings" array, or a
//     record with a field of the wrong JSON type, reported as *RecordError).
//   - Unknown:       anything else (permissions, cancelled context).
//
// Records are otherwise taken as stored. A missing field decodes to its zero
// value and a date in an unknown format keeps its text with a zero time.
//
// Each Kind has a matching sentinel (ErrNotFound, ...) usable with errors.Is.
// KindOf classifies arbitrary errors.
//
// # Logging
//
// A successful load logs the record count at Info; a failure logs the kind
// and detail at Error. The loader has no other side effects and is safe to
// call concurrently.
package loader
