package geom

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Dataset is an ordered set of records loaded from one source file.
type Dataset struct {
	Name    string
	Path    string
	Records []Record
}

// NameFromPath strips directories and the extension: "data/panthera_onca.json" -> "panthera_onca".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Select returns a new Dataset holding the records matching pred, in order.
func (d *Dataset) Select(pred func(Record) bool) *Dataset {
	out := &Dataset{Name: d.Name, Path: d.Path}
	for _, r := range d.Records {
		if pred(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Any reports whether at least one record matches pred.
func (d *Dataset) Any(pred func(Record) bool) bool {
	for _, r := range d.Records {
		if pred(r) {
			return true
		}
	}
	return false
}

// FeatureCollection converts the records to GeoJSON features. The type,
// outlier and record columns are written back as strings so popups and
// attribute tables see the same values as the source file.
func (d *Dataset) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range d.Records {
		f := geojson.NewFeature(r.Geometry)
		for k, v := range r.Properties {
			f.Properties[k] = v
		}
		f.Properties[ColType] = r.Type.String()
		if r.Type == TypeOccurrence {
			f.Properties[ColOutlier] = r.Outlier.String()
		}
		f.Properties[ColRecord] = r.Label
		fc.Append(f)
	}
	return fc
}

// Bound is the union of all record geometry bounds. ok is false when no
// record carries a geometry.
func (d *Dataset) Bound() (b orb.Bound, ok bool) {
	for _, r := range d.Records {
		if r.Geometry == nil {
			continue
		}
		if !ok {
			b, ok = r.Geometry.Bound(), true
			continue
		}
		b = b.Union(r.Geometry.Bound())
	}
	return b, ok
}

// Counts summarizes the dataset for status lines.
func (d *Dataset) Counts() string {
	var rng, occ, out int
	for _, r := range d.Records {
		switch {
		case IsRange(r):
			rng++
		case IsOccurrence(r):
			occ++
		case IsOutlier(r):
			out++
		}
	}
	return fmt.Sprintf("range=%d occurrence=%d outliers=%d", rng, occ, out)
}

// decodeRecord builds a Record from a property map and geometry.
func decodeRecord(props map[string]any, g orb.Geometry, lenient bool) (Record, error) {
	r := Record{Geometry: g, Properties: props}
	t, err := ParseFeatureType(stringValue(props[ColType]))
	if err != nil {
		return Record{}, err
	}
	r.Type = t
	r.Label = stringValue(props[ColRecord])
	if t != TypeOccurrence {
		return r, nil
	}
	flag, err := ParseOutlierFlag(stringValue(props[ColOutlier]))
	if err != nil {
		if !lenient {
			return Record{}, err
		}
		flag = OutlierUnset
	}
	r.Outlier = flag
	return r, nil
}

// stringValue renders a property value the way it reads in the source file.
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%g", t)
	}
	return fmt.Sprint(v)
}
