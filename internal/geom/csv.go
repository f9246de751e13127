package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// LoadCSV reads a tabular file with type/outlier/record columns. Geometry
// comes from a WKT "geometry" (or "wkt") column, or from latitude/longitude
// columns: lat|latitude|y and lon|lng|long|longitude|x (case-insensitive).
func LoadCSV(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", path, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("csv %s: empty file", path)
	}
	header := recs[0]
	idxGeom, idxLat, idxLon, idxType := -1, -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "geometry", "wkt":
			if idxGeom == -1 {
				idxGeom = i
			}
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		case ColType:
			idxType = i
		}
	}
	if idxType == -1 {
		return nil, fmt.Errorf("csv %s: %w", path, ErrMissingType)
	}
	if idxGeom == -1 && (idxLat == -1 || idxLon == -1) {
		return nil, fmt.Errorf("csv %s: %w: no geometry or latitude/longitude columns", path, ErrInvalidGeometry)
	}

	d := &Dataset{Name: NameFromPath(path), Path: path}
	for n, row := range recs[1:] {
		line := n + 2
		props := make(map[string]any, len(header))
		for i, h := range header {
			if i == idxGeom {
				continue
			}
			if i < len(row) {
				props[strings.TrimSpace(h)] = row[i]
			} else {
				props[strings.TrimSpace(h)] = ""
			}
		}
		g, err := rowGeometry(row, idxGeom, idxLon, idxLat)
		if err != nil {
			return nil, fmt.Errorf("csv %s: line %d: %w", path, line, err)
		}
		rec, err := decodeRecord(props, g, opts.Lenient)
		if err != nil {
			return nil, fmt.Errorf("csv %s: line %d: %w", path, line, err)
		}
		d.Records = append(d.Records, rec)
	}
	return d, nil
}

func rowGeometry(row []string, idxGeom, idxLon, idxLat int) (orb.Geometry, error) {
	if idxGeom >= 0 {
		if idxGeom >= len(row) || strings.TrimSpace(row[idxGeom]) == "" {
			return nil, fmt.Errorf("%w: missing geometry", ErrInvalidGeometry)
		}
		g, err := wkt.Unmarshal(strings.TrimSpace(row[idxGeom]))
		if err != nil {
			return nil, errors.Join(ErrInvalidGeometry, err)
		}
		return g, nil
	}
	if idxLon >= len(row) || idxLat >= len(row) {
		return nil, fmt.Errorf("%w: missing coordinates", ErrInvalidGeometry)
	}
	lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: bad coordinates %q,%q", ErrInvalidGeometry, row[idxLon], row[idxLat])
	}
	return orb.Point{lon, lat}, nil
}
