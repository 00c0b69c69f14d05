package main

import (
	"github.com/eak1mov/go-tilestream/frustum"
	"github.com/eak1mov/go-tilestream/projection"
	"github.com/go-gl/mathgl/mgl64"
)

const cameraHeight = 1000

// topDown returns the frustum of an orthographic camera looking straight down
// at target and seeing halfWidth east-west and halfDepth north-south of it.
func topDown(target mgl64.Vec3, halfWidth, halfDepth float64) frustum.Frustum {
	eye := target.Add(mgl64.Vec3{0, cameraHeight, 0})
	view := mgl64.LookAtV(eye, target, mgl64.Vec3{0, 0, -1})
	proj := mgl64.Ortho(-halfWidth, halfWidth, -halfDepth, halfDepth, 1, 2*cameraHeight)
	return frustum.FromMatrix(proj.Mul4(view))
}

// groundCenter returns the map center under world position (x, z).
func groundCenter(p *projection.WebMercator, x, z float64, zoom uint32) projection.LonLat {
	ox, oy := p.Fractional(p.Origin(), zoom)
	return p.LonLat(ox+x/p.TileSize(), oy-z/p.TileSize(), zoom)
}
