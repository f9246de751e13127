// Package preview serves a rendered map over HTTP for local viewing.
package preview

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sprocmap/internal/mapview"
	"sprocmap/internal/render/html"
)

// Handler renders the map on each request so layer changes made through the
// builder show up on reload.
type Handler struct {
	title string
	m     *mapview.Map
}

func NewHandler(title string, m *mapview.Map) *Handler {
	return &Handler{title: title, m: m}
}

// Page writes the Leaflet page.
func (h *Handler) Page(c *gin.Context) {
	var buf bytes.Buffer
	if err := html.Render(&buf, h.title, h.m); err != nil {
		log.Error().Err(err).Msg("render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Layers lists layer names, kinds and feature counts.
func (h *Handler) Layers(c *gin.Context) {
	out := make([]gin.H, 0, len(h.m.Layers))
	for _, l := range h.m.Layers {
		out = append(out, gin.H{"name": l.Name, "kind": l.Kind.String(), "features": l.Len(), "visible": l.Visible})
	}
	c.JSON(http.StatusOK, out)
}

// NewRouter wires the preview routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/", h.Page)
	r.GET("/layers", h.Layers)
	return r
}
