package tile_test

import (
	"slices"
	"testing"

	"github.com/eak1mov/go-tilestream/tile"
	"github.com/google/go-cmp/cmp"
)

func TestEncodeID(t *testing.T) {
	seen := make(map[uint64]tile.ID)
	for z := range 6 {
		first := uint64(1<<(2*z)-1) / 3
		for tileID := range tile.Range(uint32(z)) {
			code := tile.EncodeID(tileID)
			if code < first || code >= first+uint64(1<<(2*z)) {
				t.Errorf("EncodeID(%v) = %v, outside zoom range [%v, %v)", tileID, code, first, first+uint64(1<<(2*z)))
			}
			if other, ok := seen[code]; ok {
				t.Errorf("EncodeID(%v) = EncodeID(%v) = %v", tileID, other, code)
			}
			seen[code] = tileID
		}
	}
	if diff := cmp.Diff(uint64(0), tile.EncodeID(tile.ID{})); diff != "" {
		t.Errorf("EncodeID(0/0/0) mismatch (-want+got):\n%v", diff)
	}
}

func TestCompareOrdersZoomLevels(t *testing.T) {
	ids := []tile.ID{
		{X: 1, Y: 1, Z: 2},
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: 0, Z: 0},
		{X: 3, Y: 0, Z: 2},
	}
	slices.SortFunc(ids, tile.Compare)
	for i := 1; i < len(ids); i++ {
		if ids[i-1].Z > ids[i].Z {
			t.Errorf("sorted ids out of zoom order: %v", ids)
		}
	}
	if got, want := ids[0], (tile.ID{}); got != want {
		t.Errorf("ids[0] = %v, want = %v", got, want)
	}
}
