// Package api exposes the read-only sightings HTTP API.
//
// Separation of Concerns
//
// The sighting package owns the record model and the queries; the loader
// package owns the data file. This package maps routes to queries, loads
// the collection once per request and writes JSON. Nothing is cached and no
// state is kept between requests.
//
// Server
//
// NewServer wires handlers onto a ServeMux using method patterns and
// configures timeouts. Run listens and serves until its context is
// cancelled, then shuts down gracefully; Serve does the same on a caller
// supplied listener. Middleware assigns an X-Request-ID, sets the JSON
// content type, recovers panics and logs method/path/status/duration.
//
// Error Model
//
// A data route whose load fails answers 500 with APIError
// {error, route, timestamp}; the status is the same for every failure kind.
// A recovered panic answers 500 with {error: "Internal Server Error", message};
// the panic value is only disclosed in development. Any unmatched route,
// including a known path with another method or a non-canonical path such
// as /api//sightings, answers 404 with the list of available routes. Data
// routes also answer with a trailing slash.
//
// Current Endpoints
//
// - GET /: landing page
// - GET /healthz: liveness
// - GET /api/sightings: all records
// - GET /api/sightings/verified: verified records
// - GET /api/sightings/species-list: unique species, first-seen order
// - GET /api/sightings/habitat/forest: {habitat, sightings, count}
// - GET /api/sightings/search/eagle: first eagle, or {message}
// - GET /api/sightings/find-index/moose: {index, sighting, found}
// - GET /api/sightings/recent: three newest, notes truncated
// - GET /static/...: files below ServerOptions.StaticDir, when set
package api
