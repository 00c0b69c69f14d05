package tile

import "github.com/google/hilbert"

// EncodeID maps a tile to its position on the pyramid-wide Hilbert curve:
// all tiles of lower zoom levels come first, then tiles of the same zoom in curve order.
func EncodeID(tileID ID) uint64 {
	h, _ := hilbert.NewHilbert(int(Count(tileID.Z)))
	tileCode, _ := h.MapInverse(int(tileID.X), int(tileID.Y))

	tilesCount := (1<<(tileID.Z*2) - 1) / 3
	return uint64(tileCode + tilesCount)
}

// Compare orders tiles by their Hilbert code.
func Compare(a, b ID) int {
	ca, cb := EncodeID(a), EncodeID(b)
	switch {
	case ca < cb:
		return -1
	case ca > cb:
		return 1
	}
	return 0
}
