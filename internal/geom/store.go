package geom

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	sf "github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog/log"
)

// Options controls how rows are decoded.
type Options struct {
	// Lenient keeps occurrence rows whose outlier flag is not exactly
	// "true"/"false" instead of failing the load. Such rows end up in
	// neither point layer.
	Lenient bool
	// ValidateGeometry rejects range rows whose polygon is not valid.
	ValidateGeometry bool
}

// Store loads datasets from disk.
type Store struct {
	opts Options
}

func NewStore(opts Options) *Store {
	return &Store{opts: opts}
}

// Load reads path, choosing the decoder by extension.
func (s *Store) Load(path string) (*Dataset, error) {
	var (
		d   *Dataset
		err error
	)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".geojson":
		d, err = LoadGeoJSON(path, s.opts)
	case ".csv":
		d, err = LoadCSV(path, s.opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	if s.opts.ValidateGeometry {
		if err := validateRanges(d); err != nil {
			return nil, err
		}
	}
	log.Debug().Str("path", path).Str("name", d.Name).Int("records", d.Len()).Msg("dataset loaded")
	return d, nil
}

// validateRanges round-trips range geometries through simplefeatures, whose
// constructors enforce ring closure, self-intersection and nesting rules.
func validateRanges(d *Dataset) error {
	for i, r := range d.Records {
		if !IsRange(r) {
			continue
		}
		raw, err := geojson.NewGeometry(r.Geometry).MarshalJSON()
		if err != nil {
			return fmt.Errorf("%s: record %d: %w", d.Path, i, err)
		}
		g, err := sf.UnmarshalGeoJSON(raw)
		if err != nil {
			return fmt.Errorf("%s: record %d: %w: %v", d.Path, i, ErrInvalidGeometry, err)
		}
		switch g.Type() {
		case sf.TypePolygon, sf.TypeMultiPolygon:
		default:
			return fmt.Errorf("%s: record %d: %w: range is a %s", d.Path, i, ErrInvalidGeometry, g.Type())
		}
	}
	return nil
}
