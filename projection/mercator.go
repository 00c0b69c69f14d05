package projection

import (
	"math"

	"github.com/eak1mov/go-tilestream/tile"
)

// MaxLatitude is the latitude where the square Web Mercator map ends.
const MaxLatitude = 85.05112877980659

// WebMercator implements Projection for OSM-style slippy map services
// (EPSG:3857, 2^z by 2^z tiles at zoom z, tile rows counted from the north).
//
// World offsets are measured from a fixed origin coordinate, so tiles keep
// their positions when the map center moves.
type WebMercator struct {
	tileSize float64
	origin   LonLat
}

var _ Projection = (*WebMercator)(nil)

func NewWebMercator(tileSize float64, origin LonLat) *WebMercator {
	return &WebMercator{tileSize: tileSize, origin: origin}
}

func (p *WebMercator) TileSize() float64 {
	return p.tileSize
}

func (p *WebMercator) Origin() LonLat {
	return p.origin
}

func (p *WebMercator) TileCountPerAxis(zoom uint32) (uint32, uint32) {
	n := tile.Count(zoom)
	return n, n
}

// Fractional returns the fractional tile coordinates of c at the zoom level.
func (p *WebMercator) Fractional(c LonLat, zoom uint32) (fx, fy float64) {
	n := float64(tile.Count(zoom))
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, c.Lat))
	latRad := lat * math.Pi / 180

	fx = (c.Lon + 180) / 360 * n
	fy = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n
	return fx, fy
}

// LonLat is the inverse of Fractional.
func (p *WebMercator) LonLat(fx, fy float64, zoom uint32) LonLat {
	n := float64(tile.Count(zoom))
	lon := fx/n*360 - 180
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*fy/n)))
	return LonLat{Lon: lon, Lat: latRad * 180 / math.Pi}
}

// World returns the world-space position of c relative to the origin.
func (p *WebMercator) World(c LonLat, zoom uint32) (x, z float64) {
	fx, fy := p.Fractional(c, zoom)
	ox, oy := p.Fractional(p.origin, zoom)
	return (fx - ox) * p.tileSize, (oy - fy) * p.tileSize
}

func (p *WebMercator) CenterTile(center LonLat, zoom uint32) Tile {
	n := tile.Count(zoom)
	fx, fy := p.Fractional(center, zoom)
	x, y := clampIndex(fx, n), clampIndex(fy, n)

	ox, oy := p.Fractional(p.origin, zoom)
	return Tile{
		X:       x,
		Y:       y,
		OffsetX: (float64(x) + 0.5 - ox) * p.tileSize,
		OffsetZ: (oy - float64(y) - 0.5) * p.tileSize,
	}
}

func (p *WebMercator) NeighborTile(t Tile, countX, countY uint32, d tile.Direction) (Tile, bool) {
	x, y, ok := tile.Neighbor(t.X, t.Y, countX, countY, d)
	if !ok {
		return Tile{}, false
	}
	dx, dy := d.Step()
	return Tile{
		X:       x,
		Y:       y,
		OffsetX: t.OffsetX + float64(dx)*p.tileSize,
		OffsetZ: t.OffsetZ - float64(dy)*p.tileSize,
	}, true
}

func clampIndex(f float64, n uint32) uint32 {
	switch {
	case f < 0 || math.IsNaN(f):
		return 0
	case f >= float64(n):
		return n - 1
	}
	return uint32(f)
}
