package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"sprocmap/internal/builder"
	"sprocmap/internal/config"
	"sprocmap/internal/geom"
	"sprocmap/internal/logging"
	"sprocmap/internal/mapview"
	"sprocmap/internal/preview"
	"sprocmap/internal/render/html"
	"sprocmap/internal/tui"
)

// pathList collects a repeatable flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	configDir := flag.String("config", ".", "directory holding sprocmap.yaml")
	mode := flag.String("mode", "html", "output: html, view or serve")
	out := flag.String("out", "", "html output path (default <name>.html)")
	var merges pathList
	flag.Var(&merges, "merge", "dataset whose occurrences are added to the map (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: sprocmap [flags] <dataset.json|.geojson|.csv>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *mode == "view" {
		logging.Discard()
	} else {
		logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	}

	store := geom.NewStore(geom.Options{
		Lenient:          cfg.Load.Lenient,
		ValidateGeometry: cfg.Load.ValidateGeometry,
	})
	renderer := mapview.NewRenderer(
		mapview.WithTiles(cfg.Map.Tiles, cfg.Map.Attribution),
		mapview.WithCollapsedControl(cfg.Map.ControlCollapsed),
	)
	b := builder.New(store, renderer)

	path := flag.Arg(0)
	if path == "" && *mode == "view" {
		runViewer(tui.New(b))
		return
	}
	if path == "" {
		flag.Usage()
		os.Exit(2)
	}

	m, err := b.Construct(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to build map")
	}
	for _, p := range merges {
		if _, err := b.MergeDataset(p); err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("failed to merge dataset")
		}
	}
	title := b.Dataset().Name

	switch *mode {
	case "html":
		dst := *out
		if dst == "" {
			dst = geom.NameFromPath(path) + ".html"
		}
		if err := html.WriteFile(dst, title, m); err != nil {
			log.Fatal().Err(err).Str("path", dst).Msg("failed to write map")
		}
		log.Info().Str("path", dst).Strs("layers", m.Names()).Msg("map written")
	case "view":
		runViewer(tui.New(b))
	case "serve":
		log.Info().Str("address", cfg.Serve.Address).Msg("serving map preview")
		if err := preview.NewRouter(preview.NewHandler(title, m)).Run(cfg.Serve.Address); err != nil {
			log.Fatal().Err(err).Msg("preview server failed")
		}
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

func runViewer(m tui.Model) {
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
