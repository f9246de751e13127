package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".geojson" || ext == ".json" || ext == ".csv" {
			items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in current directory"
	}
}

// loadPath builds the map from p, or merges p into the map already shown.
func (m *Model) loadPath(p string) {
	if m.b == nil {
		m.status = "no builder"
		return
	}
	m.selPath = p
	verb := "loaded"
	var err error
	if m.b.View() == nil {
		_, err = m.b.Construct(p)
	} else {
		verb = "merged"
		_, err = m.b.MergeDataset(p)
	}
	if err != nil {
		m.status = "load error: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("%s: %s  %s  layers=%d", verb, filepath.Base(p), m.b.Dataset().Counts(), len(m.layers()))
	// If attributes are currently shown, verify availability for the new layers
	if m.showAttrs {
		m.refreshAttrsFromCurrent()
	}
}
