package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sprocmap/internal/geom"
	"sprocmap/internal/mapview"
)

// MockGeometryStore is a mock implementation of the GeometryStore interface
type MockGeometryStore struct {
	mock.Mock
}

func (m *MockGeometryStore) Load(path string) (*geom.Dataset, error) {
	args := m.Called(path)
	d, _ := args.Get(0).(*geom.Dataset)
	return d, args.Error(1)
}

func rangeRec() geom.Record {
	return geom.Record{
		Type:     geom.TypeGeographicRange,
		Geometry: orb.Polygon{{{-80, -20}, {-40, -20}, {-40, 10}, {-80, 10}, {-80, -20}}},
	}
}

func occRec(label string, flag geom.OutlierFlag, p orb.Point) geom.Record {
	return geom.Record{Type: geom.TypeOccurrence, Outlier: flag, Label: label, Geometry: p}
}

func dataset(name string, recs ...geom.Record) *geom.Dataset {
	return &geom.Dataset{Name: name, Path: name + ".json", Records: recs}
}

func newBuilder(t *testing.T, datasets map[string]*geom.Dataset) (*MapBuilder, *MockGeometryStore) {
	t.Helper()
	store := new(MockGeometryStore)
	for p, d := range datasets {
		store.On("Load", p).Return(d, nil)
	}
	return New(store, mapview.NewRenderer()), store
}

func labels(l *mapview.Layer) []string {
	var out []string
	for _, f := range l.Features.Features {
		out = append(out, f.Properties.MustString(geom.ColRecord))
	}
	return out
}

func TestConstruct_Layers(t *testing.T) {
	tests := []struct {
		name       string
		data       *geom.Dataset
		wantLayers []string
		wantCounts []int
	}{
		{
			name: "range, occurrence and outlier",
			data: dataset("panthera_onca",
				rangeRec(),
				occRec("a", geom.OutlierFalse, orb.Point{-60, -5}),
				occRec("b", geom.OutlierTrue, orb.Point{10, 50}),
			),
			wantLayers: []string{"panthera_onca bounds", "panthera_onca occurrence", "Outliers"},
			wantCounts: []int{1, 1, 1},
		},
		{
			name: "no outliers",
			data: dataset("panthera_onca",
				rangeRec(),
				occRec("a", geom.OutlierFalse, orb.Point{-60, -5}),
				occRec("c", geom.OutlierFalse, orb.Point{-61, -6}),
			),
			wantLayers: []string{"panthera_onca bounds", "panthera_onca occurrence"},
			wantCounts: []int{1, 2},
		},
		{
			name: "no range rows keeps an empty bounds layer",
			data: dataset("puma",
				occRec("a", geom.OutlierFalse, orb.Point{-60, -5}),
			),
			wantLayers: []string{"puma bounds", "puma occurrence"},
			wantCounts: []int{0, 1},
		},
		{
			name: "unset flags fall out of both point layers",
			data: dataset("puma",
				rangeRec(),
				occRec("a", geom.OutlierUnset, orb.Point{-60, -5}),
				occRec("b", geom.OutlierTrue, orb.Point{1, 1}),
			),
			wantLayers: []string{"puma bounds", "puma occurrence", "Outliers"},
			wantCounts: []int{1, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, store := newBuilder(t, map[string]*geom.Dataset{"in.json": tt.data})

			m, err := b.Construct("in.json")
			require.NoError(t, err)

			assert.Equal(t, tt.wantLayers, m.Names())
			for i, l := range m.Layers {
				assert.Equal(t, tt.wantCounts[i], l.Len(), l.Name)
			}
			assert.NotNil(t, m.Control)
			assert.Nil(t, m.Center, "view is not fitted to the data")
			assert.Same(t, tt.data, b.Dataset())
			assert.Same(t, m, b.View())
			store.AssertExpectations(t)
		})
	}
}

func TestConstruct_Styling(t *testing.T) {
	b, _ := newBuilder(t, map[string]*geom.Dataset{"in.json": dataset("panthera_onca",
		rangeRec(),
		occRec("GBIF 1", geom.OutlierFalse, orb.Point{-60, -5}),
		occRec("GBIF 2", geom.OutlierTrue, orb.Point{10, 50}),
	)})
	m, err := b.Construct("in.json")
	require.NoError(t, err)

	bounds, occ, out := m.Layers[0], m.Layers[1], m.Layers[2]
	assert.Equal(t, mapview.KindBounds, bounds.Kind)
	assert.Nil(t, bounds.Popup)
	assert.Nil(t, bounds.Marker)

	want := &mapview.Popup{Fields: []string{"record"}, Aliases: []string{""}}
	assert.Equal(t, want, occ.Popup)
	assert.Nil(t, occ.Marker)
	assert.Equal(t, []string{"GBIF 1"}, labels(occ))

	assert.Equal(t, want, out.Popup)
	assert.Equal(t, &mapview.Marker{Color: "red", Icon: "trash"}, out.Marker)
	assert.Equal(t, []string{"GBIF 2"}, labels(out))
}

func TestMergeDataset(t *testing.T) {
	first := dataset("panthera_onca",
		rangeRec(),
		occRec("a", geom.OutlierFalse, orb.Point{-60, -5}),
		occRec("b", geom.OutlierTrue, orb.Point{10, 50}),
	)
	second := dataset("puma_concolor",
		rangeRec(),
		occRec("c", geom.OutlierFalse, orb.Point{-70, 0}),
		occRec("d", geom.OutlierFalse, orb.Point{-71, 1}),
		occRec("e", geom.OutlierTrue, orb.Point{5, 5}),
	)
	b, store := newBuilder(t, map[string]*geom.Dataset{"a.json": first, "b.json": second})

	m, err := b.Construct("a.json")
	require.NoError(t, err)
	before := make([]*mapview.Layer, len(m.Layers))
	copy(before, m.Layers)
	beforeCounts := []int{m.Layers[0].Len(), m.Layers[1].Len(), m.Layers[2].Len()}

	merged, err := b.MergeDataset("b.json")
	require.NoError(t, err)
	assert.Same(t, m, merged)

	require.Len(t, m.Layers, 4)
	for i := range before {
		assert.Same(t, before[i], m.Layers[i])
		assert.Equal(t, beforeCounts[i], m.Layers[i].Len())
	}
	added := m.Layers[3]
	assert.Equal(t, "puma_concolor occurrence", added.Name)
	assert.Equal(t, mapview.KindOccurrence, added.Kind)
	assert.Equal(t, []string{"c", "d"}, labels(added))
	assert.Same(t, second, b.Dataset())
	assert.Nil(t, m.Center)
	store.AssertExpectations(t)
}

func TestMergeDataset_BeforeConstruct(t *testing.T) {
	b, store := newBuilder(t, nil)
	_, err := b.MergeDataset("b.json")
	assert.ErrorIs(t, err, ErrNotConstructed)
	store.AssertNotCalled(t, "Load", mock.Anything)
}

func TestConstruct_Twice(t *testing.T) {
	b, _ := newBuilder(t, map[string]*geom.Dataset{"a.json": dataset("a", rangeRec())})
	_, err := b.Construct("a.json")
	require.NoError(t, err)
	_, err = b.Construct("a.json")
	assert.ErrorIs(t, err, ErrAlreadyConstructed)
}

func TestConstruct_LoadError(t *testing.T) {
	store := new(MockGeometryStore)
	store.On("Load", "broken.json").Return(nil, assert.AnError)
	b := New(store, mapview.NewRenderer())

	_, err := b.Construct("broken.json")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, b.View())
	assert.Nil(t, b.Dataset())
}

func TestMergeDataset_LoadErrorKeepsMap(t *testing.T) {
	store := new(MockGeometryStore)
	first := dataset("a", rangeRec(), occRec("x", geom.OutlierFalse, orb.Point{1, 1}))
	store.On("Load", "a.json").Return(first, nil)
	store.On("Load", "b.json").Return(nil, assert.AnError)
	b := New(store, mapview.NewRenderer())

	m, err := b.Construct("a.json")
	require.NoError(t, err)
	_, err = b.MergeDataset("b.json")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, m.Layers, 2)
	assert.Same(t, first, b.Dataset())
}

// recordingRenderer wraps the real renderer and logs the call sequence.
type recordingRenderer struct {
	*mapview.Renderer
	calls []string
}

func (r *recordingRenderer) NewMap() *mapview.Map {
	r.calls = append(r.calls, "map")
	return r.Renderer.NewMap()
}

func (r *recordingRenderer) AddChild(m *mapview.Map, l *mapview.Layer) {
	r.calls = append(r.calls, "child:"+l.Kind.String())
	r.Renderer.AddChild(m, l)
}

func (r *recordingRenderer) AddLayerControl(m *mapview.Map) {
	r.calls = append(r.calls, "control")
	r.Renderer.AddLayerControl(m)
}

func (r *recordingRenderer) AddFeatures(l *mapview.Layer, fc *geojson.FeatureCollection, s mapview.Style) {
	r.Renderer.AddFeatures(l, fc, s)
}

func TestConstruct_CallOrder(t *testing.T) {
	store := new(MockGeometryStore)
	store.On("Load", "a.json").Return(dataset("a",
		rangeRec(),
		occRec("x", geom.OutlierFalse, orb.Point{1, 1}),
		occRec("y", geom.OutlierTrue, orb.Point{2, 2}),
	), nil)
	rr := &recordingRenderer{Renderer: mapview.NewRenderer()}
	b := New(store, rr)

	_, err := b.Construct("a.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"map", "child:bounds", "child:occurrence", "child:outliers", "control"}, rr.calls)
}

func TestConstruct_FromFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "panthera_onca.json")
	content := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"type":"geographic_range"},
		 "geometry":{"type":"Polygon","coordinates":[[[-80,-20],[-40,-20],[-40,10],[-80,10],[-80,-20]]]}},
		{"type":"Feature","properties":{"type":"occurrence","outlier":"false","record":"GBIF 1"},
		 "geometry":{"type":"Point","coordinates":[-60,-5]}},
		{"type":"Feature","properties":{"type":"occurrence","outlier":"true","record":"GBIF 2"},
		 "geometry":{"type":"Point","coordinates":[10,50]}}]}`
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))

	b := New(geom.NewStore(geom.Options{}), mapview.NewRenderer())
	m, err := b.Construct(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"panthera_onca bounds", "panthera_onca occurrence", "Outliers"}, m.Names())

	_, err = New(geom.NewStore(geom.Options{}), mapview.NewRenderer()).Construct(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
