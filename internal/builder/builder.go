// Package builder assembles a species map from one or more datasets.
package builder

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"sprocmap/internal/geom"
	"sprocmap/internal/mapview"
)

var (
	ErrAlreadyConstructed = errors.New("builder: map already constructed")
	ErrNotConstructed     = errors.New("builder: no map constructed yet")
)

// OutliersLayerName is shared by every dataset; outlier layers are not
// namespaced per species.
const OutliersLayerName = "Outliers"

// GeometryStore loads a dataset from a file path.
type GeometryStore interface {
	Load(path string) (*geom.Dataset, error)
}

// MapRenderer creates and composes map objects.
type MapRenderer interface {
	NewMap() *mapview.Map
	NewLayer(name string, kind mapview.LayerKind) *mapview.Layer
	AddFeatures(l *mapview.Layer, fc *geojson.FeatureCollection, style mapview.Style)
	AddLayerControl(m *mapview.Map)
	AddChild(m *mapview.Map, l *mapview.Layer)
}

// MapBuilder owns one map and the dataset most recently added to it.
// It is not safe for concurrent use.
type MapBuilder struct {
	store    GeometryStore
	renderer MapRenderer

	data *geom.Dataset
	view *mapview.Map
}

func New(store GeometryStore, renderer MapRenderer) *MapBuilder {
	return &MapBuilder{store: store, renderer: renderer}
}

// Construct loads path and builds the map: base tiles, bounds layer,
// occurrence layer, outliers layer (only when some occurrence is flagged),
// then the layer control. On a load failure the builder is left unchanged.
func (b *MapBuilder) Construct(path string) (*mapview.Map, error) {
	if b.view != nil {
		return nil, ErrAlreadyConstructed
	}
	d, err := b.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	b.data = d
	b.view = b.renderer.NewMap()

	b.addBounds()
	b.addPoints()
	b.addOutliers()
	b.renderer.AddLayerControl(b.view)

	log.Info().Str("dataset", d.Name).Str("counts", d.Counts()).Int("layers", len(b.view.Layers)).Msg("map constructed")
	return b.view, nil
}

// MergeDataset replaces the current dataset with the one at path and adds
// its occurrence layer to the existing map. Bounds and outliers of the
// merged dataset are not drawn and the view is not refitted.
func (b *MapBuilder) MergeDataset(path string) (*mapview.Map, error) {
	if b.view == nil {
		return nil, ErrNotConstructed
	}
	d, err := b.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	b.data = d
	b.addPoints()

	log.Info().Str("dataset", d.Name).Int("layers", len(b.view.Layers)).Msg("dataset merged")
	return b.view, nil
}

// View returns the map, or nil before Construct.
func (b *MapBuilder) View() *mapview.Map { return b.view }

// Dataset returns the dataset most recently loaded.
func (b *MapBuilder) Dataset() *geom.Dataset { return b.data }

// recordPopup shows the record label without a field caption.
func recordPopup() *mapview.Popup {
	return &mapview.Popup{Fields: []string{geom.ColRecord}, Aliases: []string{""}}
}

// addBounds always adds the layer, even when the dataset has no range rows.
func (b *MapBuilder) addBounds() {
	l := b.renderer.NewLayer(b.data.Name+" bounds", mapview.KindBounds)
	sub := b.data.Select(geom.IsRange)
	b.renderer.AddFeatures(l, sub.FeatureCollection(), mapview.Style{})
	b.renderer.AddChild(b.view, l)
	log.Debug().Str("layer", l.Name).Int("features", sub.Len()).Msg("layer added")
}

func (b *MapBuilder) addPoints() {
	l := b.renderer.NewLayer(b.data.Name+" occurrence", mapview.KindOccurrence)
	sub := b.data.Select(geom.IsOccurrence)
	b.renderer.AddFeatures(l, sub.FeatureCollection(), mapview.Style{Popup: recordPopup()})
	b.renderer.AddChild(b.view, l)
	log.Debug().Str("layer", l.Name).Int("features", sub.Len()).Msg("layer added")
}

func (b *MapBuilder) addOutliers() {
	if !b.data.Any(geom.IsOutlier) {
		log.Debug().Str("dataset", b.data.Name).Msg("no outliers, layer skipped")
		return
	}
	l := b.renderer.NewLayer(OutliersLayerName, mapview.KindOutliers)
	sub := b.data.Select(geom.IsOutlier)
	b.renderer.AddFeatures(l, sub.FeatureCollection(), mapview.Style{
		Popup:  recordPopup(),
		Marker: &mapview.Marker{Color: "red", Icon: "trash"},
	})
	b.renderer.AddChild(b.view, l)
	log.Debug().Str("layer", l.Name).Int("features", sub.Len()).Msg("layer added")
}
