package layer

import (
	"github.com/eak1mov/go-tilestream/frustum"
	"github.com/eak1mov/go-tilestream/projection"
	"github.com/eak1mov/go-tilestream/tile"
	"github.com/go-gl/mathgl/mgl64"
)

// grow discovers every tile connected to start whose footprint intersects the frustum.
//
// Tiles are expanded breadth-first from start, neighbours in South, North,
// East, West order. A tile failing the frustum test is not marked visited and
// is not expanded; since the frustum is convex, the visible tiles of a zoom
// level form one connected region around the tile under the map center.
// Each tile is expanded at most once per pass.
func (l *Layer) grow(stats *Stats, f frustum.Frustum, zoom, countX, countY uint32, start projection.Tile) {
	queue := []projection.Tile{start}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		id := t.ID(zoom)
		if _, ok := l.visited[id]; ok {
			continue
		}

		position := mgl64.Vec3{t.OffsetX, 0, t.OffsetZ}.Add(l.applied)
		if !f.Intersects(l.template.BoundsAt(position, l.cfg.TileSize)) {
			continue
		}

		l.visited[id] = struct{}{}
		stats.Visited++
		l.show(stats, id, position)

		for _, d := range tile.Directions {
			n, ok := l.proj.NeighborTile(t, countX, countY, d)
			if !ok {
				continue
			}
			if _, ok := l.visited[n.ID(zoom)]; ok {
				continue
			}
			queue = append(queue, n)
		}
	}
}
