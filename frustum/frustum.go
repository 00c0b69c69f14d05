// Package frustum implements the camera visibility volume used to decide
// which tiles are on screen.
package frustum

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is the set of points p with Normal·p + D = 0.
// Points with a positive signed distance are on the inner side.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// NewPlane returns the plane through point facing along normal.
func NewPlane(normal, point mgl64.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: -n.Dot(point)}
}

// Distance returns the signed distance from the plane to v.
func (p Plane) Distance(v mgl64.Vec3) float64 {
	return p.Normal.Dot(v) + p.D
}

func (p Plane) normalize() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / l), D: p.D / l}
}

// AABB is an axis-aligned bounding box given by its center and half sizes.
type AABB struct {
	Center  mgl64.Vec3
	Extents mgl64.Vec3
}

func (b AABB) Min() mgl64.Vec3 { return b.Center.Sub(b.Extents) }
func (b AABB) Max() mgl64.Vec3 { return b.Center.Add(b.Extents) }

// Frustum is a convex volume bounded by planes.
type Frustum struct {
	Planes []Plane
}

// FromPlanes builds a frustum from planes whose normals point inward.
func FromPlanes(planes ...Plane) Frustum {
	normalized := make([]Plane, len(planes))
	for i, p := range planes {
		normalized[i] = p.normalize()
	}
	return Frustum{Planes: normalized}
}

// FromMatrix extracts the six clip planes (left, right, bottom, top, near, far)
// of an OpenGL style view-projection matrix.
func FromMatrix(viewProj mgl64.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)
	rows := [6]mgl64.Vec4{
		r3.Add(r0),
		r3.Sub(r0),
		r3.Add(r1),
		r3.Sub(r1),
		r3.Add(r2),
		r3.Sub(r2),
	}
	planes := make([]Plane, len(rows))
	for i, r := range rows {
		planes[i] = Plane{Normal: r.Vec3(), D: r.W()}.normalize()
	}
	return Frustum{Planes: planes}
}

// Contains reports whether the point is inside or on the boundary.
func (f Frustum) Contains(v mgl64.Vec3) bool {
	for _, p := range f.Planes {
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}

// Intersects reports whether the box touches the frustum. The test is conservative:
// boxes near frustum corners may be reported as intersecting although they are outside.
func (f Frustum) Intersects(b AABB) bool {
	for _, p := range f.Planes {
		r := math.Abs(p.Normal.X())*b.Extents.X() +
			math.Abs(p.Normal.Y())*b.Extents.Y() +
			math.Abs(p.Normal.Z())*b.Extents.Z()
		if p.Distance(b.Center)+r < 0 {
			return false
		}
	}
	return true
}

// Translate returns the frustum moved by delta.
func (f Frustum) Translate(delta mgl64.Vec3) Frustum {
	planes := make([]Plane, len(f.Planes))
	for i, p := range f.Planes {
		planes[i] = Plane{Normal: p.Normal, D: p.D - p.Normal.Dot(delta)}
	}
	return Frustum{Planes: planes}
}
