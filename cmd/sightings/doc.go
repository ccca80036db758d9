// Command sightings serves the read-only wildlife sightings API.
//
// Usage:
//
//	sightings [serve] --config sightings.yaml --listen :3000 --data data/sightings.json
//	sightings check --data data/sightings.json
//
// Flags:
//
//	--config    YAML config file (optional; defaults apply when missing)
//	--verbose   debug logging
//	--listen    HTTP bind address, overrides server.addr and PORT
//	--data      sightings file, overrides data.path and SIGHTINGS_DATA
//
// Behavior:
//
// serve (the default) starts the HTTP server and blocks until SIGINT or
// SIGTERM, then shuts down gracefully. check loads the data file once,
// prints the record count and exits non-zero if loading fails.
package main
