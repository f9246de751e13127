// Package html writes a map as a self-contained Leaflet page.
package html

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"

	"sprocmap/internal/mapview"
)

// DefaultZoom is used when the map carries no explicit view.
const DefaultZoom = 1

type layerData struct {
	ID      template.JS
	Name    string
	Visible bool
	GeoJSON template.JS
	Fields  []string
	Aliases []string
	Popup   bool
	Marker  *mapview.Marker
}

type pageData struct {
	Title       string
	TileURL     string
	Attribution string
	View        template.JS
	Layers      []layerData
	Control     bool
	Collapsed   bool
}

var page = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
  <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css" />
  <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/4.7.0/css/font-awesome.min.css" />
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <script src="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.js"></script>
  <style>html, body, #map { width: 100%; height: 100%; margin: 0; padding: 0; }</style>
</head>
<body>
  <div id="map"></div>
  <script>
    const map = L.map('map').setView({{.View}});
    L.tileLayer({{.TileURL}}, { attribution: {{.Attribution}}, maxZoom: 18 }).addTo(map);
    const overlays = {};
    {{- range .Layers}}
    const {{.ID}} = L.featureGroup();
    L.geoJSON({{.GeoJSON}}, {
      {{- if .Marker}}
      pointToLayer: (feature, latlng) => L.marker(latlng, {
        icon: L.AwesomeMarkers.icon({ markerColor: {{.Marker.Color}}, icon: {{.Marker.Icon}}, prefix: 'fa' })
      }),
      {{- end}}
      {{- if .Popup}}
      onEachFeature: (feature, layer) => {
        const fields = {{.Fields}};
        const aliases = {{.Aliases}};
        const rows = fields.map((f, i) => {
          const v = feature.properties[f] === undefined ? '' : String(feature.properties[f]);
          return aliases[i] ? aliases[i] + ': ' + v : v;
        });
        layer.bindPopup(rows.join('<br>'));
      },
      {{- end}}
    }).addTo({{.ID}});
    overlays[{{.Name}}] = {{.ID}};
    {{- if .Visible}}
    {{.ID}}.addTo(map);
    {{- end}}
    {{- end}}
    {{- if .Control}}
    L.control.layers(null, overlays, { collapsed: {{.Collapsed}} }).addTo(map);
    {{- end}}
  </script>
</body>
</html>
`))

// Render writes m as an HTML page.
func Render(w io.Writer, title string, m *mapview.Map) error {
	data := pageData{
		Title:       title,
		TileURL:     m.Tiles.URL,
		Attribution: m.Tiles.Attribution,
		Control:     m.Control != nil,
	}
	var lat, lon float64
	if m.Center != nil {
		lon, lat = m.Center.Lon(), m.Center.Lat()
	}
	zoom := m.Zoom
	if zoom == 0 {
		zoom = DefaultZoom
	}
	data.View = template.JS(fmt.Sprintf("[%g, %g], %d", lat, lon, zoom))
	if m.Control != nil {
		data.Collapsed = m.Control.Collapsed
	}
	for _, l := range m.Layers {
		raw, err := json.Marshal(l.Features)
		if err != nil {
			return fmt.Errorf("html: layer %q: %w", l.Name, err)
		}
		ld := layerData{
			ID:      template.JS(l.ID),
			Name:    l.Name,
			Visible: l.Visible,
			GeoJSON: template.JS(raw),
			Marker:  l.Marker,
		}
		if l.Popup != nil {
			ld.Popup = true
			ld.Fields = l.Popup.Fields
			ld.Aliases = l.Popup.Aliases
		}
		data.Layers = append(data.Layers, ld)
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return fmt.Errorf("html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile renders m into path.
func WriteFile(path, title string, m *mapview.Map) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, title, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
