package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/sanverite/wildlife-sightings/internal/sighting"
)

// DefaultPath is used when no data path is configured.
const DefaultPath = "data/sightings.json"

// collectionField is the top-level key holding the records.
const collectionField = "sightings"

// Loader reads sighting records from a JSON file on every call.
type Loader struct {
	path   string
	logger *zap.Logger
}

// New returns a Loader for path. A nil logger disables logging.
func New(path string, logger *zap.Logger) *Loader {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{path: path, logger: logger.Named("loader")}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// Load reads and validates the data file. The returned slice is never nil on
// success.
func (l *Loader) Load(ctx context.Context) ([]sighting.Record, error) {
	records, err := l.load(ctx)
	if err != nil {
		l.logger.Error("failed to load sightings",
			zap.String("path", l.path),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("loaded sightings",
		zap.String("path", l.path),
		zap.Int("count", len(records)))
	return records, nil
}

func (l *Loader) load(ctx context.Context) ([]sighting.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, l.fail(KindUnknown, err)
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, l.fail(KindNotFound, nil)
		}
		return nil, l.fail(KindUnknown, err)
	}
	return l.decode(raw)
}

// decode separates syntax failures from shape failures: the document is first
// checked as plain JSON, then the collection field is located, then each
// record is decoded on its own. Only a field of the wrong JSON type fails a
// record; missing fields and dates in an unknown format are kept as they are.
func (l *Loader) decode(raw []byte) ([]sighting.Record, error) {
	var syntax json.RawMessage
	if err := json.Unmarshal(raw, &syntax); err != nil {
		return nil, l.fail(KindMalformedData, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, l.fail(KindInvalidSchema, errors.New("top-level value is not an object"))
	}

	field, ok := doc[collectionField]
	field = bytes.TrimSpace(field)
	if !ok || bytes.Equal(field, []byte("null")) {
		return nil, l.fail(KindInvalidSchema, fmt.Errorf("missing %q field", collectionField))
	}
	if len(field) == 0 || field[0] != '[' {
		return nil, l.fail(KindInvalidSchema, fmt.Errorf("%q is not an array", collectionField))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(field, &items); err != nil {
		return nil, l.fail(KindInvalidSchema, err)
	}

	records := make([]sighting.Record, 0, len(items))
	for i, item := range items {
		var r sighting.Record
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, l.fail(KindInvalidSchema, &RecordError{Index: i, Err: err})
		}
		records = append(records, r)
	}
	return records, nil
}

func (l *Loader) fail(kind Kind, err error) error {
	return &Error{Kind: kind, Path: l.path, Err: err}
}
