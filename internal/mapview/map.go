// Package mapview holds the in-memory map that the builder assembles and the
// html and tui packages draw.
package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LayerKind tells outputs how a layer is meant to be drawn.
type LayerKind int

const (
	KindBounds LayerKind = iota
	KindOccurrence
	KindOutliers
)

func (k LayerKind) String() string {
	switch k {
	case KindBounds:
		return "bounds"
	case KindOccurrence:
		return "occurrence"
	case KindOutliers:
		return "outliers"
	}
	return "unknown"
}

// TileLayer is the base map imagery.
type TileLayer struct {
	URL         string
	Attribution string
}

// Popup lists the feature properties shown when a marker is clicked.
// Aliases label each field; an empty alias shows the bare value.
type Popup struct {
	Fields  []string
	Aliases []string
}

// Marker overrides the default point marker.
type Marker struct {
	Color string
	Icon  string
}

// Style is what AddFeatures applies to a layer.
type Style struct {
	Popup  *Popup
	Marker *Marker
}

// Layer is a named, independently toggleable group of features.
type Layer struct {
	ID       string
	Name     string
	Kind     LayerKind
	Visible  bool
	Features *geojson.FeatureCollection
	Popup    *Popup
	Marker   *Marker
}

// Len returns the number of features on the layer.
func (l *Layer) Len() int {
	if l.Features == nil {
		return 0
	}
	return len(l.Features.Features)
}

// LayerControl is the visibility switcher attached to a map.
type LayerControl struct {
	Collapsed bool
}

// Map is a base tile layer plus an ordered list of feature layers.
// Center is nil when the renderer's default view applies.
type Map struct {
	Tiles   TileLayer
	Center  *orb.Point
	Zoom    int
	Layers  []*Layer
	Control *LayerControl
}

// Layer returns the first layer with the given name.
func (m *Map) Layer(name string) (*Layer, bool) {
	for _, l := range m.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Names lists layer names in draw order.
func (m *Map) Names() []string {
	out := make([]string, 0, len(m.Layers))
	for _, l := range m.Layers {
		out = append(out, l.Name)
	}
	return out
}

// Toggle flips the visibility of layer i and reports the new state.
// Without a layer control the layers cannot be toggled.
func (m *Map) Toggle(i int) (visible, ok bool) {
	if m.Control == nil || i < 0 || i >= len(m.Layers) {
		return false, false
	}
	m.Layers[i].Visible = !m.Layers[i].Visible
	return m.Layers[i].Visible, true
}

// SetAllVisible shows or hides every layer.
func (m *Map) SetAllVisible(v bool) {
	for _, l := range m.Layers {
		l.Visible = v
	}
}

// Bound is the union of the bounds of all layer features.
func (m *Map) Bound() (b orb.Bound, ok bool) {
	for _, l := range m.Layers {
		if l.Features == nil {
			continue
		}
		for _, f := range l.Features.Features {
			if f.Geometry == nil {
				continue
			}
			if !ok {
				b, ok = f.Geometry.Bound(), true
				continue
			}
			b = b.Union(f.Geometry.Bound())
		}
	}
	return b, ok
}
