package tui

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"
)

// maxLat is the Web Mercator latitude limit.
const maxLat = 85.05112878

var (
	toMercator   = wgs84.EPSG().Transform(4326, 3857)
	fromMercator = wgs84.EPSG().Transform(3857, 4326)
)

// extent is the visible area in EPSG:3857 meters.
type extent struct {
	MinX, MinY, MaxX, MaxY float64
}

func (e extent) valid() bool {
	return e.MaxX > e.MinX && e.MaxY > e.MinY
}

// project converts lon/lat to Web Mercator, clamping latitude to the
// projection's limit.
func project(lon, lat float64) (x, y float64) {
	lat = math.Max(-maxLat, math.Min(maxLat, lat))
	x, y, _ = toMercator(lon, lat, 0)
	return x, y
}

func unproject(x, y float64) (lon, lat float64) {
	lon, lat, _ = fromMercator(x, y, 0)
	return lon, lat
}

// worldExtent is the default view, matching a web map at zoom 1.
func worldExtent() extent {
	minX, minY := project(-180, -maxLat)
	maxX, maxY := project(180, maxLat)
	return extent{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// fitExtent covers b with a 5% margin; degenerate bounds get a 10 km pad.
func fitExtent(b orb.Bound) extent {
	minX, minY := project(b.Min.Lon(), b.Min.Lat())
	maxX, maxY := project(b.Max.Lon(), b.Max.Lat())
	padX := (maxX - minX) * 0.05
	padY := (maxY - minY) * 0.05
	if padX == 0 {
		padX = 10000
	}
	if padY == 0 {
		padY = 10000
	}
	return extent{MinX: minX - padX, MinY: minY - padY, MaxX: maxX + padX, MaxY: maxY + padY}
}
