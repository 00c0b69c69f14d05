package layer

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/eak1mov/go-tilestream/tile"
)

// Registry maps the displayed tiles to their resources.
type Registry struct {
	tiles map[tile.ID]*Resource
}

func NewRegistry() *Registry {
	return &Registry{tiles: make(map[tile.ID]*Resource)}
}

func (r *Registry) TryGet(id tile.ID) (*Resource, bool) {
	res, ok := r.tiles[id]
	return res, ok
}

// Insert registers the resource for the tile. The tile must not be registered.
func (r *Registry) Insert(id tile.ID, res *Resource) {
	if _, ok := r.tiles[id]; ok {
		panic(fmt.Sprintf("tilestream: tile %v registered twice", id))
	}
	if res.registered {
		panic(fmt.Sprintf("tilestream: resource %s registered under two tiles", res.name))
	}
	res.registered = true
	r.tiles[id] = res
}

// Remove unregisters the tile and returns its resource. The tile must be registered.
func (r *Registry) Remove(id tile.ID) *Resource {
	res, ok := r.tiles[id]
	if !ok {
		panic(fmt.Sprintf("tilestream: tile %v is not registered", id))
	}
	delete(r.tiles, id)
	res.registered = false
	return res
}

func (r *Registry) Len() int {
	return len(r.tiles)
}

// All iterates over the registered tiles in unspecified order.
func (r *Registry) All() iter.Seq2[tile.ID, *Resource] {
	return maps.All(r.tiles)
}

// IDs returns the registered tiles ordered by tile code.
func (r *Registry) IDs() []tile.ID {
	return slices.SortedFunc(maps.Keys(r.tiles), tile.Compare)
}
