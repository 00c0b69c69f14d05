package frustum_test

import (
	"testing"

	"github.com/eak1mov/go-tilestream/frustum"
	"github.com/go-gl/mathgl/mgl64"
)

func topDownOrtho() frustum.Frustum {
	view := mgl64.LookAtV(mgl64.Vec3{10, 100, 20}, mgl64.Vec3{10, 0, 20}, mgl64.Vec3{0, 0, -1})
	proj := mgl64.Ortho(-5, 5, -3, 3, 1, 200)
	return frustum.FromMatrix(proj.Mul4(view))
}

func TestFromMatrixOrtho(t *testing.T) {
	f := topDownOrtho()
	if got, want := len(f.Planes), 6; got != want {
		t.Fatalf("len(Planes) = %v, want = %v", got, want)
	}

	for _, tc := range []struct {
		point mgl64.Vec3
		want  bool
	}{
		{mgl64.Vec3{10, 0, 20}, true},
		{mgl64.Vec3{5.5, 0, 17.5}, true},
		{mgl64.Vec3{14.5, 0, 22.5}, true},
		{mgl64.Vec3{16, 0, 20}, false},
		{mgl64.Vec3{4, 0, 20}, false},
		{mgl64.Vec3{10, 0, 24}, false},
		{mgl64.Vec3{10, 0, 16}, false},
		{mgl64.Vec3{10, 150, 20}, false},
	} {
		if got := f.Contains(tc.point); got != tc.want {
			t.Errorf("Contains(%v) = %v, want = %v", tc.point, got, tc.want)
		}
	}
}

func TestIntersects(t *testing.T) {
	f := topDownOrtho()
	for _, tc := range []struct {
		box  frustum.AABB
		want bool
	}{
		{frustum.AABB{Center: mgl64.Vec3{10, 0, 20}, Extents: mgl64.Vec3{0.5, 0, 0.5}}, true},
		{frustum.AABB{Center: mgl64.Vec3{15.5, 0, 20}, Extents: mgl64.Vec3{1, 0, 1}}, true},
		{frustum.AABB{Center: mgl64.Vec3{17, 0, 20}, Extents: mgl64.Vec3{1, 0, 1}}, false},
		{frustum.AABB{Center: mgl64.Vec3{10, 0, 25}, Extents: mgl64.Vec3{1, 0, 1}}, false},
		{frustum.AABB{Center: mgl64.Vec3{10, 0, 20}, Extents: mgl64.Vec3{100, 0, 100}}, true},
	} {
		if got := f.Intersects(tc.box); got != tc.want {
			t.Errorf("Intersects(%v) = %v, want = %v", tc.box, got, tc.want)
		}
	}
}

func TestFromMatrixPerspective(t *testing.T) {
	view := mgl64.LookAtV(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1})
	proj := mgl64.Perspective(mgl64.DegToRad(90), 1, 0.1, 100)
	f := frustum.FromMatrix(proj.Mul4(view))

	// A 90 degree vertical field of view at height 10 sees the ground within 10 units.
	if !f.Contains(mgl64.Vec3{9, 0, 0}) {
		t.Errorf("Contains(9, 0, 0) = false, want = true")
	}
	if f.Contains(mgl64.Vec3{11, 0, 0}) {
		t.Errorf("Contains(11, 0, 0) = true, want = false")
	}
	if f.Contains(mgl64.Vec3{0, 20, 0}) {
		t.Errorf("Contains(0, 20, 0) = true, want = false")
	}
}

func TestFromPlanesAndTranslate(t *testing.T) {
	f := frustum.FromPlanes(
		frustum.Plane{Normal: mgl64.Vec3{2, 0, 0}, D: 0},
		frustum.NewPlane(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{4, 0, 0}),
	)
	if !f.Contains(mgl64.Vec3{2, 0, 0}) {
		t.Errorf("Contains(2, 0, 0) = false, want = true")
	}
	if got := f.Planes[0].Normal.Len(); got != 1 {
		t.Errorf("plane normal length = %v, want = 1", got)
	}

	moved := f.Translate(mgl64.Vec3{10, 0, 0})
	if moved.Contains(mgl64.Vec3{2, 0, 0}) {
		t.Errorf("translated Contains(2, 0, 0) = true, want = false")
	}
	if !moved.Contains(mgl64.Vec3{12, 0, 0}) {
		t.Errorf("translated Contains(12, 0, 0) = false, want = true")
	}
}
