package sighting

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record is a single wildlife observation as stored in the data file.
// Fields other than the known ones are kept in Extra and written back
// unchanged, so a record is served as it was stored.
type Record struct {
	Species  string  `json:"species"`
	Habitat  string  `json:"habitat"`
	Date     Date    `json:"date"`
	Location string  `json:"location"`
	Verified bool    `json:"verified"`
	Notes    *string `json:"notes,omitempty"` // nil when absent; "" is kept

	Extra map[string]json.RawMessage `json:"-"`
}

// recordFields mirrors Record without its methods.
type recordFields Record

var knownFields = map[string]struct{}{
	"species": {}, "habitat": {}, "date": {}, "location": {}, "verified": {}, "notes": {},
}

// NotesText returns the notes, or "" when absent.
func (r Record) NotesText() string {
	if r.Notes == nil {
		return ""
	}
	return *r.Notes
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
// A known field of the wrong JSON type is an error.
func (r *Record) UnmarshalJSON(b []byte) error {
	var f recordFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k := range knownFields {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}
	f.Extra = all
	*r = Record(f)
	return nil
}

// MarshalJSON writes the known fields followed by Extra.
func (r Record) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(recordFields(r))
	if err != nil || len(r.Extra) == 0 {
		return known, err
	}
	extra, err := json.Marshal(r.Extra)
	if err != nil {
		return nil, err
	}
	// Splice the two objects: {known...} + {extra...}.
	var buf bytes.Buffer
	buf.Write(known[:len(known)-1])
	buf.WriteByte(',')
	buf.Write(extra[1:])
	return buf.Bytes(), nil
}

// dateLayouts are tried in order when decoding a Date. Fractional seconds
// are accepted after the seconds field by every layout that has one.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Date is a point in time that remembers the text it was parsed from.
// A Date whose text matches no layout has a zero Time but keeps the text.
type Date struct {
	time.Time
	raw string
}

// ParseDate parses s using the accepted layouts. Times without a zone are UTC.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t, raw: s}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// MustParseDate is ParseDate for fixtures; it panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid reports whether the date parsed to a point in time.
func (d Date) Valid() bool { return !d.Time.IsZero() }

// String returns the text the date was parsed from, or RFC 3339 when the
// Date was built from a bare time.
func (d Date) String() string {
	if d.raw != "" {
		return d.raw
	}
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.UTC().Format(time.RFC3339)
}

// Equal reports whether both dates denote the same instant with the same text.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time) && d.raw == o.raw
}

// MarshalJSON writes the original text back.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any JSON string. Text in none of the accepted layouts
// is kept with a zero Time. JSON null leaves the Date zero; any other JSON
// type is an error.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{raw: s}
		return nil
	}
	*d = parsed
	return nil
}

// Summary is the projection returned by the recent view.
type Summary struct {
	Species  string `json:"species"`
	Date     Date   `json:"date"`
	Location string `json:"location"`
	Verified bool   `json:"verified"`
	Notes    string `json:"notes"`
}
