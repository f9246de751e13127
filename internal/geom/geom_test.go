package geom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"type": "geographic_range"},
     "geometry": {"type": "Polygon", "coordinates": [[[-80,-20],[-40,-20],[-40,10],[-80,10],[-80,-20]]]}},
    {"type": "Feature", "properties": {"type": "occurrence", "outlier": "false", "record": "GBIF 1001"},
     "geometry": {"type": "Point", "coordinates": [-60, -5]}},
    {"type": "Feature", "properties": {"type": "occurrence", "outlier": "true", "record": "GBIF 1002"},
     "geometry": {"type": "Point", "coordinates": [10, 50]}}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"panthera_onca.json", "panthera_onca"},
		{"/data/sets/panthera_onca.json", "panthera_onca"},
		{"puma.concolor.geojson", "puma.concolor"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NameFromPath(tt.path))
		})
	}
}

func TestParseOutlierFlag(t *testing.T) {
	f, err := ParseOutlierFlag("true")
	require.NoError(t, err)
	assert.Equal(t, OutlierTrue, f)

	f, err = ParseOutlierFlag("false")
	require.NoError(t, err)
	assert.Equal(t, OutlierFalse, f)

	for _, bad := range []string{"", "True", "1", "yes"} {
		_, err := ParseOutlierFlag(bad)
		assert.ErrorIs(t, err, ErrInvalidOutlier, bad)
	}
}

func TestParseFeatureType(t *testing.T) {
	ft, err := ParseFeatureType("occurrence")
	require.NoError(t, err)
	assert.Equal(t, TypeOccurrence, ft)

	_, err = ParseFeatureType("")
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = ParseFeatureType("habitat")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestLoadGeoJSON(t *testing.T) {
	p := writeFile(t, "panthera_onca.json", sampleGeoJSON)
	d, err := NewStore(Options{}).Load(p)
	require.NoError(t, err)

	assert.Equal(t, "panthera_onca", d.Name)
	require.Equal(t, 3, d.Len())
	assert.Equal(t, TypeGeographicRange, d.Records[0].Type)
	assert.Equal(t, OutlierUnset, d.Records[0].Outlier)
	assert.Equal(t, "GBIF 1001", d.Records[1].Label)
	assert.Equal(t, OutlierFalse, d.Records[1].Outlier)
	assert.Equal(t, OutlierTrue, d.Records[2].Outlier)
	assert.Equal(t, orb.Point{10, 50}, d.Records[2].Geometry)

	b, ok := d.Bound()
	require.True(t, ok)
	assert.Equal(t, orb.Bound{Min: orb.Point{-80, -20}, Max: orb.Point{10, 50}}, b)
	assert.Equal(t, "range=1 occurrence=1 outliers=1", d.Counts())
}

func TestLoadGeoJSON_BooleanOutlier(t *testing.T) {
	p := writeFile(t, "bools.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"type":"occurrence","outlier":true,"record":"a"},
		 "geometry":{"type":"Point","coordinates":[1,2]}}]}`)
	d, err := NewStore(Options{}).Load(p)
	require.NoError(t, err)
	assert.Equal(t, OutlierTrue, d.Records[0].Outlier)
}

func TestLoadGeoJSON_SingleFeature(t *testing.T) {
	p := writeFile(t, "one.json", `{"type":"Feature","properties":{"type":"occurrence","outlier":"false","record":"x"},
		"geometry":{"type":"Point","coordinates":[3,4]}}`)
	d, err := NewStore(Options{}).Load(p)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
}

func TestLoad_InvalidOutlier(t *testing.T) {
	content := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"type":"occurrence","outlier":"","record":"a"},
		 "geometry":{"type":"Point","coordinates":[1,2]}},
		{"type":"Feature","properties":{"type":"occurrence","record":"b"},
		 "geometry":{"type":"Point","coordinates":[1,2]}}]}`
	p := writeFile(t, "bad.json", content)

	_, err := NewStore(Options{}).Load(p)
	assert.ErrorIs(t, err, ErrInvalidOutlier)

	d, err := NewStore(Options{Lenient: true}).Load(p)
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())
	for _, r := range d.Records {
		assert.Equal(t, OutlierUnset, r.Outlier)
		assert.False(t, IsOccurrence(r))
		assert.False(t, IsOutlier(r))
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewStore(Options{}).Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := NewStore(Options{}).Load("ranges.shp")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
	t.Run("missing type", func(t *testing.T) {
		p := writeFile(t, "notype.json", `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{"record":"a"},"geometry":{"type":"Point","coordinates":[1,2]}}]}`)
		_, err := NewStore(Options{Lenient: true}).Load(p)
		assert.ErrorIs(t, err, ErrMissingType)
	})
	t.Run("unparseable", func(t *testing.T) {
		p := writeFile(t, "garbage.json", `{not json`)
		_, err := NewStore(Options{}).Load(p)
		assert.Error(t, err)
	})
}

func TestLoadCSV_WKT(t *testing.T) {
	content := "type,outlier,record,geometry\n" +
		"geographic_range,,,\"POLYGON((-80 -20,-40 -20,-40 10,-80 10,-80 -20))\"\n" +
		"occurrence,false,GBIF 1001,POINT(-60 -5)\n" +
		"occurrence,true,GBIF 1002,POINT(10 50)\n"
	p := writeFile(t, "panthera_onca.csv", content)

	csvData, err := NewStore(Options{}).Load(p)
	require.NoError(t, err)
	jsonData, err := NewStore(Options{}).Load(writeFile(t, "panthera_onca.json", sampleGeoJSON))
	require.NoError(t, err)

	require.Equal(t, jsonData.Len(), csvData.Len())
	for i := range jsonData.Records {
		assert.Equal(t, jsonData.Records[i].Type, csvData.Records[i].Type)
		assert.Equal(t, jsonData.Records[i].Outlier, csvData.Records[i].Outlier)
		assert.Equal(t, jsonData.Records[i].Label, csvData.Records[i].Label)
		assert.True(t, orb.Equal(jsonData.Records[i].Geometry, csvData.Records[i].Geometry))
	}
}

func TestLoadCSV_LatLon(t *testing.T) {
	p := writeFile(t, "pts.csv", "type,outlier,record,Latitude,Longitude\noccurrence,false,r1,-5,-60\n")
	d, err := NewStore(Options{}).Load(p)
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())
	assert.Equal(t, orb.Point{-60, -5}, d.Records[0].Geometry)
	assert.Equal(t, "r1", d.Records[0].Label)
}

func TestLoadCSV_BadGeometry(t *testing.T) {
	p := writeFile(t, "bad.csv", "type,outlier,record,geometry\noccurrence,false,r1,POINT(oops)\n")
	_, err := NewStore(Options{}).Load(p)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestDataset_SelectAndFeatureCollection(t *testing.T) {
	d, err := NewStore(Options{}).Load(writeFile(t, "panthera_onca.json", sampleGeoJSON))
	require.NoError(t, err)

	occ := d.Select(IsOccurrence)
	assert.Equal(t, "panthera_onca", occ.Name)
	require.Equal(t, 1, occ.Len())

	fc := occ.FeatureCollection()
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "GBIF 1001", fc.Features[0].Properties.MustString(ColRecord))
	assert.Equal(t, "false", fc.Features[0].Properties.MustString(ColOutlier))

	assert.True(t, d.Any(IsOutlier))
	assert.False(t, occ.Any(IsOutlier))

	empty := d.Select(func(Record) bool { return false })
	_, ok := empty.Bound()
	assert.False(t, ok)
	assert.Empty(t, empty.FeatureCollection().Features)
}

func TestValidateGeometry(t *testing.T) {
	bowtie := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"type":"geographic_range"},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[10,10],[10,0],[0,10],[0,0]]]}}]}`
	p := writeFile(t, "bowtie.json", bowtie)

	_, err := NewStore(Options{}).Load(p)
	require.NoError(t, err)

	_, err = NewStore(Options{ValidateGeometry: true}).Load(p)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = NewStore(Options{ValidateGeometry: true}).Load(writeFile(t, "ok.json", sampleGeoJSON))
	assert.NoError(t, err)
}
