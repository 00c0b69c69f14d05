package layer

import (
	"fmt"
	"sync"

	"github.com/eak1mov/go-tilestream/frustum"
	"github.com/go-gl/mathgl/mgl64"
)

// Template is the shared prototype of tile resources. It is never displayed:
// the growth search uses it as a stencil for frustum tests and the pool clones it.
type Template struct {
	provider string
	extents  mgl64.Vec3
}

// Provider returns the name the template is shared under.
func (t *Template) Provider() string {
	return t.provider
}

// BoundsAt returns the template bounds when placed at position with the given scale.
func (t *Template) BoundsAt(position mgl64.Vec3, scale float64) frustum.AABB {
	return frustum.AABB{Center: position, Extents: t.extents.Mul(scale)}
}

func (t *Template) clone(name, parent string) *Resource {
	return &Resource{
		name:    name,
		parent:  parent,
		extents: t.extents,
	}
}

type templateEntry struct {
	template *Template
	uses     int
}

var templates = struct {
	sync.Mutex
	entries map[string]*templateEntry
}{entries: make(map[string]*templateEntry)}

// TemplateLease is one user's reference to a shared template.
type TemplateLease struct {
	provider string
	template *Template
}

// AcquireTemplate returns a lease on the template of the provider,
// creating the template on first use.
func AcquireTemplate(provider string) *TemplateLease {
	templates.Lock()
	defer templates.Unlock()

	entry, ok := templates.entries[provider]
	if !ok {
		entry = &templateEntry{
			template: &Template{provider: provider, extents: mgl64.Vec3{0.5, 0, 0.5}},
		}
		templates.entries[provider] = entry
	}
	entry.uses++
	return &TemplateLease{provider: provider, template: entry.template}
}

// Template returns the leased template. It panics after Release.
func (l *TemplateLease) Template() *Template {
	if l.template == nil {
		panic("tilestream: template lease used after release")
	}
	return l.template
}

// Release drops the reference; the last release destroys the template.
func (l *TemplateLease) Release() {
	if l.template == nil {
		panic("tilestream: template lease released twice")
	}

	templates.Lock()
	defer templates.Unlock()

	entry, ok := templates.entries[l.provider]
	if !ok || entry.template != l.template || entry.uses <= 0 {
		panic(fmt.Sprintf("tilestream: template %q released without users", l.provider))
	}
	entry.uses--
	if entry.uses == 0 {
		delete(templates.entries, l.provider)
	}
	l.template = nil
}

// TemplateUses returns the number of live leases on the provider's template.
func TemplateUses(provider string) int {
	templates.Lock()
	defer templates.Unlock()

	if entry, ok := templates.entries[provider]; ok {
		return entry.uses
	}
	return 0
}
