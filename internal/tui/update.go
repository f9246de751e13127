package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"sprocmap/internal/mapview"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			m.l.SetSize(28-2, m.height-1-2) // provisional; will be refined in View
		}
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.mergeMode {
			switch msg.String() {
			case "esc":
				m.mergeMode = false
				m.ta.Blur()
				return m, nil
			case "enter":
				p := strings.TrimSpace(m.ta.Value())
				if p == "" {
					m.status = "merge: empty path"
					return m, nil
				}
				m.loadPath(p)
				m.mergeMode = false
				m.ta.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		switch k := msg.String(); k {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.toggleLayer(int(k[0] - '1'))
		case "l":
			m.toggleAll()
		case "+", "=":
			if m.zoom < 256 {
				m.zoom *= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "-", "_":
			if m.zoom > 0.05 {
				m.zoom /= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "f":
			m.fitToData()
		case "0":
			m.view = worldExtent()
			m.zoom = 1.0
			m.offsetX, m.offsetY = 0, 0
			m.status = "view: world"
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
				m.l.SetSize(28-2, m.height-1-2)
			}
		case "m":
			m.mergeMode = true
			m.ta.SetValue("")
			m.status = "merge mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
		case "i":
			m.inspect()
		case "esc":
			m.inspectPopup = ""
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		case "up":
			m.offsetY -= 1
		case "down":
			m.offsetY += 1
		case "left":
			m.offsetX -= 2
		case "right":
			m.offsetX += 2
		}
	case tea.MouseMsg:
		// track hover over map area
		// compute map origin and size (must match View layout)
		sidebarWidth := 0
		if m.showSidebar {
			sidebarWidth = 28
		}
		headerHeight := 1
		footerHeight := 2
		contentHeight := m.height - headerHeight - footerHeight
		if contentHeight < 4 {
			contentHeight = 4
		}
		contentWidth := max(10, m.width)

		mapWidth := contentWidth - sidebarWidth - 1
		if mapWidth < 10 {
			mapWidth = 10
		}
		mapHeight := contentHeight
		mapOriginX := sidebarWidth
		if m.showSidebar {
			mapOriginX++
		}
		mapOriginY := headerHeight
		cx, cy := msg.X, msg.Y
		if cx >= mapOriginX && cx < mapOriginX+mapWidth && cy >= mapOriginY && cy < mapOriginY+mapHeight {
			m.hovering = true
			m.hoverCellX = cx - mapOriginX
			m.hoverCellY = cy - mapOriginY
			if lon, lat, ok := m.cellToLonLat(m.hoverCellX, m.hoverCellY, mapWidth, mapHeight); ok {
				m.hoverHasGeo = true
				m.hoverLon = lon
				m.hoverLat = lat
			} else {
				m.hoverHasGeo = false
			}
			// snap to the nearest visible marker using micro coords
			hxMic := m.hoverCellX * 2
			hyMic := m.hoverCellY * 4
			best := 1<<31 - 1
			bx, by := hxMic, hyMic
			m.forEachPoint(func(_ *mapview.Layer, _ map[string]any, p orb.Point) {
				mx, my, ok := m.screenXYMicro(p[0], p[1], mapWidth, mapHeight)
				if !ok {
					return
				}
				dx := mx - hxMic
				dy := my - hyMic
				d := dx*dx + dy*dy
				if d < best {
					best = d
					bx, by = mx, my
				}
			})
			m.hoverMicX, m.hoverMicY = bx, by
		} else {
			m.hovering = false
		}
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) toggleLayer(i int) {
	layers := m.layers()
	if m.b == nil || m.b.View() == nil {
		m.status = "no map loaded"
		return
	}
	visible, ok := m.b.View().Toggle(i)
	if !ok {
		m.status = fmt.Sprintf("no layer %d", i+1)
		return
	}
	m.status = fmt.Sprintf("%s: %v", layers[i].Name, visible)
}

func (m *Model) toggleAll() {
	layers := m.layers()
	if len(layers) == 0 || m.b.View().Control == nil {
		m.status = "no layers"
		return
	}
	all := true
	for _, l := range layers {
		all = all && l.Visible
	}
	m.b.View().SetAllVisible(!all)
	m.status = fmt.Sprintf("layers: %v", !all)
}

// fitToData zooms the view onto the loaded features. The map itself keeps
// its default view; this only moves the terminal viewport.
func (m *Model) fitToData() {
	if m.b == nil || m.b.View() == nil {
		m.status = "no map loaded"
		return
	}
	b, ok := m.b.View().Bound()
	if !ok {
		m.status = "no features to fit"
		return
	}
	m.view = fitExtent(b)
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
	m.status = fmt.Sprintf("view: fit [%.3f, %.3f, %.3f, %.3f]", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat())
}

func (m *Model) inspect() {
	l, props, pt, ok := m.inspectNearest()
	if !ok {
		m.inspectPopup = "no feature nearby"
		m.status = m.inspectPopup
		return
	}
	meta := []string{
		fmt.Sprintf("layer: %s", l.Name),
	}
	if txt := popupText(l, props); txt != "" {
		meta = append(meta, txt)
	}
	meta = append(meta, fmt.Sprintf("lon=%.6f lat=%.6f", pt.Lon(), pt.Lat()))
	if d := m.b.Dataset(); d != nil {
		meta = append(meta, fmt.Sprintf("dataset: %s (%s)", d.Name, filepath.Base(d.Path)))
	}
	if area := m.rangeAreaKm2(); area > 0 {
		meta = append(meta, fmt.Sprintf("range area: %.0f km²", area))
	}
	m.inspectPopup = strings.Join(meta, "\n")
	m.status = "inspect popup"
}
