// Package projection converts between geographic coordinates, tile grid
// indices and world-space offsets for a tile service.
package projection

import "github.com/eak1mov/go-tilestream/tile"

// LonLat is a WGS84 coordinate in degrees.
type LonLat struct {
	Lon float64
	Lat float64
}

// Tile is a grid cell together with the world-space offset of its center.
// World space is laid out with +X pointing east and +Z pointing north.
type Tile struct {
	X       uint32
	Y       uint32
	OffsetX float64
	OffsetZ float64
}

// ID returns the address of the tile at the given zoom level.
func (t Tile) ID(zoom uint32) tile.ID {
	return tile.ID{X: t.X, Y: t.Y, Z: zoom}
}

// Projection is implemented once per tile service provider.
type Projection interface {
	// TileCountPerAxis returns the grid size at the zoom level.
	TileCountPerAxis(zoom uint32) (countX, countY uint32)

	// CenterTile returns the tile containing the map center.
	CenterTile(center LonLat, zoom uint32) Tile

	// NeighborTile returns the adjacent tile in direction d, or false at the grid boundary.
	NeighborTile(t Tile, countX, countY uint32, d tile.Direction) (Tile, bool)

	// TileSize returns the world-space edge length of one tile.
	TileSize() float64
}
