package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"sprocmap/internal/mapview"
)

// layers returns the map layers, or nil before a map is built.
func (m Model) layers() []*mapview.Layer {
	if m.b == nil || m.b.View() == nil {
		return nil
	}
	return m.b.View().Layers
}

// cellToLonLat converts a map cell coordinate back to lon/lat using the view extent, zoom, and pan.
func (m Model) cellToLonLat(cx, cy, w, h int) (float64, float64, bool) {
	if !m.view.valid() {
		return 0, 0, false
	}
	if w <= 1 || h <= 1 {
		return 0, 0, false
	}
	zx := float64(cx-m.offsetX) / float64(w-1)
	zy := 1.0 - float64(cy-m.offsetY)/float64(h-1)
	nx := 0.5 + (zx-0.5)/m.zoom
	ny := 0.5 + (zy-0.5)/m.zoom
	x := m.view.MinX + nx*(m.view.MaxX-m.view.MinX)
	y := m.view.MinY + ny*(m.view.MaxY-m.view.MinY)
	lon, lat := unproject(x, y)
	return lon, lat, true
}

// screenXYMicro maps lon/lat into a 2x4 microgrid per cell for braille rendering.
func (m Model) screenXYMicro(lon, lat float64, w, h int) (int, int, bool) {
	if !m.view.valid() {
		return 0, 0, false
	}
	px, py := project(lon, lat)
	nx := (px - m.view.MinX) / (m.view.MaxX - m.view.MinX)
	ny := (py - m.view.MinY) / (m.view.MaxY - m.view.MinY)
	zx := 0.5 + (nx-0.5)*m.zoom
	zy := 0.5 + (ny-0.5)*m.zoom
	wMic := w * 2
	hMic := h * 4
	sx := int(zx*float64(wMic-1)) + m.offsetX*2
	sy := int((1.0-zy)*float64(hMic-1)) + m.offsetY*4
	return sx, sy, true
}

// screenXY maps lon/lat to current screen integer coordinates considering zoom and pan.
func (m Model) screenXY(lon, lat float64, w, h int) (int, int, bool) {
	mx, my, ok := m.screenXYMicro(lon, lat, w, h)
	if !ok {
		return 0, 0, false
	}
	return mx / 2, my / 4, true
}

// drawGeometry rasterizes g into br. Polygons are filled (outer ring,
// even-odd per scanline) and outlined; points become markers.
func (m Model) drawGeometry(br *brailleBuf, g orb.Geometry, shape markerShape, w, h int) {
	switch g := g.(type) {
	case orb.Point:
		if mx, my, ok := m.screenXYMicro(g[0], g[1], w, h); ok {
			br.drawMarker(mx, my, shape)
		}
	case orb.MultiPoint:
		for _, p := range g {
			m.drawGeometry(br, p, shape, w, h)
		}
	case orb.LineString:
		m.drawPath(br, g, false, w, h)
	case orb.MultiLineString:
		for _, ls := range g {
			m.drawPath(br, ls, false, w, h)
		}
	case orb.Ring:
		m.drawPolygon(br, orb.Polygon{g}, w, h)
	case orb.Polygon:
		m.drawPolygon(br, g, w, h)
	case orb.MultiPolygon:
		for _, p := range g {
			m.drawPolygon(br, p, w, h)
		}
	case orb.Bound:
		m.drawPolygon(br, g.ToPolygon(), w, h)
	case orb.Collection:
		for _, c := range g {
			m.drawGeometry(br, c, shape, w, h)
		}
	}
}

func (m Model) drawPath(br *brailleBuf, pts []orb.Point, closed bool, w, h int) {
	var mic [][2]int
	for _, p := range pts {
		mx, my, ok := m.screenXYMicro(p[0], p[1], w, h)
		if !ok {
			continue
		}
		mic = append(mic, [2]int{mx, my})
	}
	for i := 0; i+1 < len(mic); i++ {
		br.drawLineMicro(mic[i][0], mic[i][1], mic[i+1][0], mic[i+1][1])
	}
	if closed && len(mic) > 2 {
		a, b := mic[len(mic)-1], mic[0]
		br.drawLineMicro(a[0], a[1], b[0], b[1])
	}
}

func (m Model) drawPolygon(br *brailleBuf, poly orb.Polygon, w, h int) {
	if len(poly) == 0 {
		return
	}
	var outerMic [][2]int
	for _, p := range poly[0] {
		mx, my, ok := m.screenXYMicro(p[0], p[1], w, h)
		if !ok {
			continue
		}
		outerMic = append(outerMic, [2]int{mx, my})
	}
	// fill using even-odd rule per scanline on outer ring (microgrid, holes ignored for now)
	if len(outerMic) >= 3 {
		hMic := h * 4
		for yMic := 0; yMic < hMic; yMic++ {
			var xs []int
			for i := 0; i < len(outerMic); i++ {
				a := outerMic[i]
				b := outerMic[(i+1)%len(outerMic)]
				if a[1] == b[1] { // horizontal edge: skip
					continue
				}
				y0, y1 := a[1], b[1]
				x0, x1 := a[0], b[0]
				if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
					t := float64(yMic-y0) / float64(y1-y0)
					xs = append(xs, int(float64(x0)+t*float64(x1-x0)))
				}
			}
			if len(xs) < 2 {
				continue
			}
			sort.Ints(xs)
			for i := 0; i+1 < len(xs); i += 2 {
				xstart, xend := xs[i], xs[i+1]
				// sparse fill
				for xMic := max(0, xstart); xMic <= min(xend, w*2-1); xMic++ {
					if (xMic+yMic)%3 == 0 {
						br.setPixel(xMic, yMic)
					}
				}
			}
		}
	}
	// draw edges (high-res), holes included
	for _, ring := range poly {
		m.drawPath(br, ring, true, w, h)
	}
}

type drawnLayer struct {
	br    *brailleBuf
	style lipgloss.Style
}

// renderMap draws every visible layer into its own braille buffer and
// composites them in layer order, later layers on top.
func (m Model) renderMap(w, h int) string {
	var drawn []drawnLayer
	for _, l := range m.layers() {
		if !l.Visible || l.Features == nil {
			continue
		}
		br := newBrailleBuf(w, h)
		shape := shapePlus
		if l.Kind == mapview.KindOutliers || l.Marker != nil {
			shape = shapeCross
		}
		for _, f := range l.Features.Features {
			if f.Geometry != nil {
				m.drawGeometry(br, f.Geometry, shape, w, h)
			}
		}
		drawn = append(drawn, drawnLayer{br: br, style: layerStyle(l)})
	}

	hoverX, hoverY := -1, -1
	if m.hovering {
		hoverX, hoverY = m.hoverMicX/2, m.hoverMicY/4
	}

	lines := make([]string, h)
	for y := 0; y < h; y++ {
		var sb strings.Builder
		var run []rune
		runStyle := -1
		flush := func() {
			if len(run) == 0 {
				return
			}
			switch {
			case runStyle == -1:
				sb.WriteString(string(run))
			case runStyle == len(drawn):
				sb.WriteString(hoverStyle.Render(string(run)))
			default:
				sb.WriteString(drawn[runStyle].style.Render(string(run)))
			}
			run = run[:0]
		}
		for x := 0; x < w; x++ {
			r, s := ' ', -1
			for i := len(drawn) - 1; i >= 0; i-- {
				if c := drawn[i].br.cell(x, y); c != ' ' {
					r, s = c, i
					break
				}
			}
			if x == hoverX && y == hoverY {
				r, s = '◯', len(drawn)
			}
			if s != runStyle {
				flush()
				runStyle = s
			}
			run = append(run, r)
		}
		flush()
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// forEachPoint visits the point features of visible layers.
func (m Model) forEachPoint(fn func(l *mapview.Layer, props map[string]any, p orb.Point)) {
	for _, l := range m.layers() {
		if !l.Visible || l.Features == nil || l.Kind == mapview.KindBounds {
			continue
		}
		for _, f := range l.Features.Features {
			switch g := f.Geometry.(type) {
			case orb.Point:
				fn(l, f.Properties, g)
			case orb.MultiPoint:
				for _, p := range g {
					fn(l, f.Properties, p)
				}
			}
		}
	}
}

// inspectNearest finds the marker closest to the viewport center.
func (m Model) inspectNearest() (layer *mapview.Layer, props map[string]any, pt orb.Point, ok bool) {
	w, h := m.mapW, m.mapH
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	cx, cy := w/2, h/2
	bestD := 1<<31 - 1
	m.forEachPoint(func(l *mapview.Layer, p map[string]any, q orb.Point) {
		sx, sy, ok2 := m.screenXY(q[0], q[1], w, h)
		if !ok2 {
			return
		}
		dx := sx - cx
		dy := sy - cy
		d := dx*dx + dy*dy
		if d < bestD {
			bestD = d
			layer, props, pt, ok = l, p, q, true
		}
	})
	return layer, props, pt, ok
}

// popupText renders the layer's popup fields for one feature, one per line.
func popupText(l *mapview.Layer, props map[string]any) string {
	if l.Popup == nil {
		return ""
	}
	var rows []string
	for i, f := range l.Popup.Fields {
		v := ""
		if pv, ok := props[f]; ok && pv != nil {
			v = fmt.Sprint(pv)
		}
		if i < len(l.Popup.Aliases) && l.Popup.Aliases[i] != "" {
			v = l.Popup.Aliases[i] + ": " + v
		}
		rows = append(rows, v)
	}
	return strings.Join(rows, "\n")
}

// rangeAreaKm2 sums the geodesic area of the visible bounds layers.
func (m Model) rangeAreaKm2() float64 {
	var total float64
	for _, l := range m.layers() {
		if !l.Visible || l.Kind != mapview.KindBounds || l.Features == nil {
			continue
		}
		for _, f := range l.Features.Features {
			if f.Geometry != nil {
				total += geo.Area(f.Geometry)
			}
		}
	}
	return total / 1e6
}
