// Package sighting owns the wildlife sighting record model and the read-only
// queries served by the API.
//
// Overview
//
// A Record is one observation: species, habitat, date, location, a verified
// flag and optional notes. Records are plain values; a collection is built
// fresh for each request by the loader package and discarded afterwards.
// Nothing in this package holds state between calls.
//
// Dates
//
// Date keeps both the parsed time (for ordering) and the exact text found in
// the data file. Marshalling writes the original text back, so clients see
// dates exactly as they were recorded. A date in no known layout keeps its
// text with a zero time and sorts after every dated record.
//
// Records are decoded leniently: missing fields stay zero and unknown fields
// are kept in Extra and written back.
//
// Queries
//
//   - All:                    identity, never nil
//   - Verified:               records with Verified == true
//   - SpeciesList:            unique species in first-seen order
//   - ByHabitat:              case-insensitive habitat match wrapped with a count
//   - FirstSpeciesContaining: first record whose species contains a term, case-insensitive
//   - IndexOfSpecies:         first index of an exact, case-sensitive species match
//   - Recent:                 newest first (stable), limited, projected to a summary
//
// Every query is a pure function of its input slice and never mutates it.
package sighting
