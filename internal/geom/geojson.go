package geom

import (
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON reads a GeoJSON FeatureCollection (or a single Feature) and
// decodes every feature into a Record.
func LoadGeoJSON(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && fc.Type != "FeatureCollection" {
		err = fmt.Errorf("unexpected type %q", fc.Type)
	}
	if err != nil {
		// a bare Feature is accepted as a one-row dataset
		feat, ferr := geojson.UnmarshalFeature(data)
		if ferr != nil || feat.Type != "Feature" {
			return nil, fmt.Errorf("geojson %s: %w", path, err)
		}
		fc = geojson.NewFeatureCollection().Append(feat)
	}

	d := &Dataset{Name: NameFromPath(path), Path: path}
	for i, feat := range fc.Features {
		if feat.Geometry == nil {
			return nil, fmt.Errorf("geojson %s: feature %d: %w: missing geometry", path, i, ErrInvalidGeometry)
		}
		props := map[string]any(feat.Properties)
		if props == nil {
			props = map[string]any{}
		}
		r, err := decodeRecord(props, feat.Geometry, opts.Lenient)
		if err != nil {
			return nil, fmt.Errorf("geojson %s: feature %d: %w", path, i, err)
		}
		d.Records = append(d.Records, r)
	}
	return d, nil
}
