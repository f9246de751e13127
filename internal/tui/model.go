package tui

import (
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"sprocmap/internal/builder"
)

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int
	view    extent

	status string

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Data
	b *builder.MapBuilder

	// last rendered map size (for inspect)
	mapW int
	mapH int

	// merge prompt
	mergeMode bool
	ta        textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverMicX   int
	hoverMicY   int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// attributes table
	showAttrs bool
	tbl       table.Model
}

// New returns a viewer bound to b. The builder may already hold a map.
func New(b *builder.MapBuilder) Model {
	m := Model{
		showSidebar: false,
		helpVisible: true,
		zoom:        1.0,
		view:        worldExtent(),
		status:      "sprocmap ready",
		b:           b,
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Datasets"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Path of a dataset to merge (.json, .geojson, .csv). Enter to merge; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(3)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath builds the map from path at launch.
func NewWithPath(b *builder.MapBuilder, path string) Model {
	m := New(b)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return nil }
