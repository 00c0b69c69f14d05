package layer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Pool keeps inactive tile resources for reuse.
type Pool struct {
	template *Template
	parent   string

	free        []*Resource
	constructed int
	discarded   int
}

func NewPool(template *Template, parent string) *Pool {
	return &Pool{template: template, parent: parent}
}

// Acquire returns an active resource placed at position, reusing a free one when possible.
func (p *Pool) Acquire(position mgl64.Vec3, scale float64) *Resource {
	var r *Resource
	if n := len(p.free); n > 0 {
		r = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		p.constructed++
		r = p.template.clone(fmt.Sprintf("tile-%d", p.constructed), p.parent)
	}
	r.pooled = false
	r.active = true
	r.place(position, scale)
	return r
}

// Release deactivates the resource and returns it to the free list.
// The resource must not be registered.
func (p *Pool) Release(r *Resource) {
	if r.pooled {
		panic(fmt.Sprintf("tilestream: resource %s released twice", r.name))
	}
	if r.registered {
		panic(fmt.Sprintf("tilestream: resource %s released while registered", r.name))
	}
	r.enabled = false
	r.active = false
	r.pooled = true
	p.free = append(p.free, r)
}

// Discard deactivates the resource and drops it instead of keeping it for reuse.
func (p *Pool) Discard(r *Resource) {
	if r.pooled {
		panic(fmt.Sprintf("tilestream: pooled resource %s discarded", r.name))
	}
	if r.registered {
		panic(fmt.Sprintf("tilestream: resource %s discarded while registered", r.name))
	}
	r.enabled = false
	r.active = false
	p.discarded++
}

func (p *Pool) Len() int         { return len(p.free) }
func (p *Pool) Constructed() int { return p.constructed }
func (p *Pool) Discarded() int   { return p.discarded }
