package mapview

import (
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

const (
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// Renderer builds Map values. It owns no state beyond the tile settings and
// is safe to reuse across maps.
type Renderer struct {
	tiles            TileLayer
	controlCollapsed bool
}

type Option func(*Renderer)

// WithTiles sets the base layer URL template and attribution.
func WithTiles(url, attribution string) Option {
	return func(r *Renderer) {
		if url != "" {
			r.tiles.URL = url
		}
		if attribution != "" {
			r.tiles.Attribution = attribution
		}
	}
}

// WithCollapsedControl renders the layer control collapsed.
func WithCollapsedControl(collapsed bool) Option {
	return func(r *Renderer) { r.controlCollapsed = collapsed }
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{tiles: TileLayer{URL: DefaultTileURL, Attribution: DefaultAttribution}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NewMap returns an empty map with the default view.
func (r *Renderer) NewMap() *Map {
	return &Map{Tiles: r.tiles}
}

// NewLayer returns a visible, empty layer.
func (r *Renderer) NewLayer(name string, kind LayerKind) *Layer {
	return &Layer{
		ID:       "layer_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Name:     name,
		Kind:     kind,
		Visible:  true,
		Features: geojson.NewFeatureCollection(),
	}
}

// AddFeatures appends fc to the layer and applies the popup/marker style.
func (r *Renderer) AddFeatures(l *Layer, fc *geojson.FeatureCollection, style Style) {
	if fc != nil {
		for _, f := range fc.Features {
			l.Features.Append(f)
		}
	}
	if style.Popup != nil {
		l.Popup = style.Popup
	}
	if style.Marker != nil {
		l.Marker = style.Marker
	}
}

// AddLayerControl attaches the visibility switcher.
func (r *Renderer) AddLayerControl(m *Map) {
	m.Control = &LayerControl{Collapsed: r.controlCollapsed}
}

// AddChild appends the layer to the map.
func (r *Renderer) AddChild(m *Map, l *Layer) {
	m.Layers = append(m.Layers, l)
}
