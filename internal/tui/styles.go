package tui

import (
	"github.com/charmbracelet/lipgloss"

	"sprocmap/internal/mapview"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	hoverStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))

	boundsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	occurrenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	outlierStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

// layerStyle picks the draw style for a layer. A marker color overrides the
// kind default.
func layerStyle(l *mapview.Layer) lipgloss.Style {
	if l.Marker != nil && l.Marker.Color == "red" {
		return outlierStyle
	}
	switch l.Kind {
	case mapview.KindBounds:
		return boundsStyle
	case mapview.KindOutliers:
		return outlierStyle
	}
	return occurrenceStyle
}
