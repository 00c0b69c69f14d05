// Package tile provides the tile address type and pyramid helpers.
package tile

import (
	"context"
	"fmt"
)

// MaxZoom is the highest zoom level whose tile counts fit into uint32 coordinates.
const MaxZoom = 31

// ID represents tile coordinates in the XYZ scheme (Tiled web map).
type ID struct {
	X uint32
	Y uint32
	Z uint32
}

func (t ID) Valid() bool {
	return t.Z <= MaxZoom && t.X < Count(t.Z) && t.Y < Count(t.Z)
}

func (t ID) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// Count returns the number of tiles per axis at the given zoom level.
func Count(z uint32) uint32 {
	return 1 << z
}

// Direction names one of the four grid neighbours of a tile.
// Tile rows grow southward, as in the XYZ scheme.
type Direction uint8

const (
	South Direction = iota
	North
	East
	West
)

// Directions lists all directions in growth order.
var Directions = [...]Direction{South, North, East, West}

func (d Direction) String() string {
	switch d {
	case South:
		return "south"
	case North:
		return "north"
	case East:
		return "east"
	case West:
		return "west"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Step returns the grid delta of the direction.
func (d Direction) Step() (dx, dy int) {
	switch d {
	case South:
		return 0, 1
	case North:
		return 0, -1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	panic(fmt.Sprintf("tilestream: invalid direction %d", uint8(d)))
}

// Neighbor returns the adjacent tile in the given direction on a countX by countY grid.
// It reports false at the grid boundary: coordinates never wrap.
func Neighbor(x, y, countX, countY uint32, d Direction) (nx, ny uint32, ok bool) {
	dx, dy := d.Step()
	switch {
	case dx < 0 && x == 0, dx > 0 && x+1 >= countX:
		return 0, 0, false
	case dy < 0 && y == 0, dy > 0 && y+1 >= countY:
		return 0, 0, false
	}
	return uint32(int64(x) + int64(dx)), uint32(int64(y) + int64(dy)), true
}

// Neighbor returns the adjacent tile at the same zoom level, if it exists.
func (t ID) Neighbor(d Direction) (ID, bool) {
	n := Count(t.Z)
	x, y, ok := Neighbor(t.X, t.Y, n, n, d)
	if !ok {
		return ID{}, false
	}
	return ID{X: x, Y: y, Z: t.Z}, true
}

// Reader defines an interface for reading tile imagery from a tileset.
type Reader interface {
	// ReadTile reads a single tile from the tileset.
	// It returns the tile data or an error if the tile cannot be read.
	// If the tile does not exist, it returns an empty slice with no error.
	ReadTile(ctx context.Context, tileID ID) ([]byte, error)
}
