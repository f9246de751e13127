package tui

import (
	"encoding/json"
	"fmt"
	"sort"

	table "github.com/charmbracelet/bubbles/table"
)

// refreshAttrsFromCurrent rebuilds the table columns/rows from the visible layers
func (m *Model) refreshAttrsFromCurrent() {
	cols, rows := m.buildAttributes()
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes for visible layers"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for _, c := range cols {
		w := len(c) + 2
		if w > maxColW {
			w = maxColW
		}
		tcols = append(tcols, table.Column{Title: c, Width: w})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// Normalize each row to match the number of table columns
	colCount := len(tcols)
	for i := range trows {
		cells := []string(trows[i])
		if len(cells) < colCount {
			cells = append(cells, make([]string, colCount-len(cells))...)
		} else if len(cells) > colCount {
			cells = cells[:colCount]
		}
		trows[i] = table.Row(cells)
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes returns one row per feature of every visible layer. The
// first column names the layer; the rest are the union of property keys.
func (m *Model) buildAttributes() ([]string, [][]string) {
	type row struct {
		layer string
		props map[string]any
	}
	var feats []row
	seen := map[string]bool{}
	var keys []string
	for _, l := range m.layers() {
		if !l.Visible || l.Features == nil {
			continue
		}
		for _, f := range l.Features.Features {
			feats = append(feats, row{layer: l.Name, props: f.Properties})
			for k := range f.Properties {
				if !seen[k] {
					seen[k] = true
					keys = append(keys, k)
				}
			}
		}
	}
	if len(feats) == 0 {
		return []string{}, [][]string{}
	}
	sort.Strings(keys)
	cols := append([]string{"layer"}, keys...)
	rows := make([][]string, 0, len(feats))
	for _, f := range feats {
		vals := make([]string, 0, len(cols))
		vals = append(vals, f.layer)
		for _, k := range keys {
			vals = append(vals, cellValue(f.props[k]))
		}
		rows = append(rows, vals)
	}
	return cols, rows
}

func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}
