package api

import (
	"time"

	"github.com/sanverite/wildlife-sightings/internal/sighting"
)

// Public JSON types returned by the API. Records and habitat views are
// served as defined in the sighting package; the types here cover the
// wrappers and error payloads specific to HTTP.

// MessageResponse is returned when a search finds nothing.
type MessageResponse struct {
	Message string `json:"message"`
}

// IndexResponse is the payload of the find-index route. Sighting is null
// when Found is false.
type IndexResponse struct {
	Index    int              `json:"index"`
	Sighting *sighting.Record `json:"sighting"`
	Found    bool             `json:"found"`
}

// HealthResponse is the payload of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// APIError is the uniform payload for a route whose data could not be loaded.
type APIError struct {
	Error     string `json:"error"`
	Route     string `json:"route"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// NotFoundError is returned for any unmatched route.
type NotFoundError struct {
	Error           string   `json:"error"`
	Message         string   `json:"message"`
	AvailableRoutes []string `json:"availableRoutes"`
}

// InternalError is returned when a handler panics.
type InternalError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// TimeNow abstracts time for tests; overridden in tests.
var TimeNow = func() time.Time { return time.Now() }

func timestamp() string {
	return TimeNow().UTC().Format(time.RFC3339)
}
