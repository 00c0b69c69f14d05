package layer

import (
	"github.com/eak1mov/go-tilestream/fetch"
	"github.com/eak1mov/go-tilestream/frustum"
	"github.com/eak1mov/go-tilestream/tile"
	"github.com/go-gl/mathgl/mgl64"
)

// ImageState tracks the imagery of a displayed tile.
type ImageState uint8

const (
	ImageNone ImageState = iota
	ImagePending
	ImageLoaded
	ImageFailed
)

func (s ImageState) String() string {
	switch s {
	case ImageNone:
		return "none"
	case ImagePending:
		return "pending"
	case ImageLoaded:
		return "loaded"
	case ImageFailed:
		return "failed"
	}
	return "unknown"
}

// Resource is the visual object showing one tile. It is owned either by the
// layer registry (active) or by the pool (free).
type Resource struct {
	name   string
	parent string

	position mgl64.Vec3
	scale    float64
	extents  mgl64.Vec3
	enabled    bool
	active     bool
	pooled     bool
	registered bool

	id    tile.ID
	key   string
	image []byte
	state ImageState
	err   error
}

var _ fetch.Target = (*Resource)(nil)

func (r *Resource) Name() string           { return r.name }
func (r *Resource) Parent() string         { return r.parent }
func (r *Resource) Position() mgl64.Vec3   { return r.position }
func (r *Resource) Scale() float64         { return r.scale }
func (r *Resource) Enabled() bool          { return r.enabled }
func (r *Resource) Active() bool           { return r.active }
func (r *Resource) ID() tile.ID            { return r.id }
func (r *Resource) Key() string            { return r.key }
func (r *Resource) Image() []byte          { return r.image }
func (r *Resource) ImageState() ImageState { return r.state }
func (r *Resource) Err() error             { return r.err }

// HasImagery reports whether image data has been attached.
func (r *Resource) HasImagery() bool {
	return r.state == ImageLoaded && len(r.image) > 0
}

// Bounds returns the world-space bounds of the tile quad.
func (r *Resource) Bounds() frustum.AABB {
	return frustum.AABB{Center: r.position, Extents: r.extents.Mul(r.scale)}
}

// Deliver attaches a fetch result. Results for a key other than the current
// request are dropped, so a recycled resource never shows a stale image.
func (r *Resource) Deliver(key string, data []byte, err error) {
	if !r.active || r.state != ImagePending || key != r.key {
		return
	}
	if err != nil {
		r.state = ImageFailed
		r.err = err
		return
	}
	r.image = data
	r.state = ImageLoaded
	r.err = nil
}

func (r *Resource) place(position mgl64.Vec3, scale float64) {
	r.position = position
	r.scale = scale
}

func (r *Resource) pending(key string) {
	r.key = key
	r.state = ImagePending
	r.err = nil
}

func (r *Resource) releaseImage() {
	r.image = nil
	r.key = ""
	r.state = ImageNone
	r.err = nil
}
