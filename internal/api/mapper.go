package api

import (
	"github.com/sanverite/wildlife-sightings/internal/sighting"
)

// NoEagleMessage is returned by the eagle search when nothing matches.
const NoEagleMessage = "No eagle sighting found"

// FromSearch returns the matched record, or a MessageResponse when the
// search found nothing.
func FromSearch(r sighting.Record, found bool, message string) any {
	if !found {
		return MessageResponse{Message: message}
	}
	return r
}

// FromIndex builds the find-index payload for idx, which is -1 when nothing
// matched. The record is copied so the response does not alias the slice.
func FromIndex(records []sighting.Record, idx int) IndexResponse {
	if idx < 0 || idx >= len(records) {
		return IndexResponse{Index: -1, Sighting: nil, Found: false}
	}
	rec := records[idx]
	return IndexResponse{Index: idx, Sighting: &rec, Found: true}
}
