package loader

import (
	"errors"
	"fmt"
)

// Kind is the coarse classification of a load failure.
type Kind string

const (
	KindUnknown       Kind = "unknown"
	KindNotFound      Kind = "not_found"
	KindMalformedData Kind = "malformed_data"
	KindInvalidSchema Kind = "invalid_schema"
)

// Sentinels matched by errors.Is against any *Error of the same Kind.
var (
	ErrNotFound      = errors.New("sightings data file not found")
	ErrMalformedData = errors.New("invalid JSON format in sightings data file")
	ErrInvalidSchema = errors.New("invalid data structure: sightings array not found")
	ErrUnknown       = errors.New("failed to load sightings data")
)

// Error is returned by Load for every failure.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	var re *RecordError
	if errors.As(e.Err, &re) {
		return fmt.Sprintf("%v (%s)", re, e.Path)
	}
	base := sentinel(e.Kind).Error()
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", base, e.Path)
	}
	return fmt.Sprintf("%s (%s): %v", base, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

// RecordError reports a record of the collection that could not be decoded.
// It is wrapped in an *Error of KindInvalidSchema.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid sighting record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// KindOf classifies err. Errors not produced by this package are Unknown.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

func sentinel(k Kind) error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindMalformedData:
		return ErrMalformedData
	case KindInvalidSchema:
		return ErrInvalidSchema
	default:
		return ErrUnknown
	}
}
