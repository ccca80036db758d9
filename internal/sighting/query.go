package sighting

import (
	"slices"
	"strings"
)

const (
	// NotesLimit is the number of characters of notes kept by Recent.
	NotesLimit = 100
	// Ellipsis is appended to every non-empty note in Recent.
	Ellipsis = "..."
)

// HabitatView groups the records of one habitat with their count.
type HabitatView struct {
	Habitat   string   `json:"habitat"`
	Sightings []Record `json:"sightings"`
	Count     int      `json:"count"`
}

// All returns the records unchanged. A nil input yields an empty slice so the
// JSON encoding is [] rather than null.
func All(records []Record) []Record {
	if records == nil {
		return []Record{}
	}
	return records
}

// Verified keeps the records whose Verified flag is set.
func Verified(records []Record) []Record {
	return filter(records, func(r Record) bool { return r.Verified })
}

// SpeciesList returns each species once, in the order first seen.
func SpeciesList(records []Record) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Species]; ok {
			continue
		}
		seen[r.Species] = struct{}{}
		out = append(out, r.Species)
	}
	return out
}

// ByHabitat keeps the records whose habitat equals habitat, ignoring case.
func ByHabitat(records []Record, habitat string) HabitatView {
	matched := filter(records, func(r Record) bool {
		return strings.EqualFold(r.Habitat, habitat)
	})
	return HabitatView{
		Habitat:   habitat,
		Sightings: matched,
		Count:     len(matched),
	}
}

// FirstSpeciesContaining returns the first record whose species contains
// term, ignoring case.
func FirstSpeciesContaining(records []Record, term string) (Record, bool) {
	term = strings.ToLower(term)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Species), term) {
			return r, true
		}
	}
	return Record{}, false
}

// IndexOfSpecies returns the index of the first record whose species is
// exactly species, or -1. The comparison is case-sensitive.
func IndexOfSpecies(records []Record, species string) int {
	return slices.IndexFunc(records, func(r Record) bool {
		return r.Species == species
	})
}

// Recent returns up to limit records, newest first, as summaries. Records
// sharing a date keep their input order; records whose date did not parse
// come last. The input is not modified.
func Recent(records []Record, limit int) []Summary {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, newestFirst)
	if limit < 0 {
		limit = 0
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]Summary, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, Summary{
			Species:  r.Species,
			Date:     r.Date,
			Location: r.Location,
			Verified: r.Verified,
			Notes:    TruncateNotes(r.NotesText()),
		})
	}
	return out
}

func newestFirst(a, b Record) int {
	switch av, bv := a.Date.Valid(), b.Date.Valid(); {
	case av && bv:
		return b.Date.Compare(a.Date.Time)
	case av:
		return -1
	case bv:
		return 1
	}
	return 0
}

// TruncateNotes keeps the first NotesLimit characters and appends Ellipsis.
// Empty notes stay empty.
func TruncateNotes(notes string) string {
	if notes == "" {
		return ""
	}
	runes := []rune(notes)
	if len(runes) > NotesLimit {
		runes = runes[:NotesLimit]
	}
	return string(runes) + Ellipsis
}

func filter(records []Record, keep func(Record) bool) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
