// Package layer streams the tiles of a slippy map into a 3D scene.
//
// A Layer keeps exactly the tiles that intersect the camera frustum at the
// current zoom level. Each Refresh evicts stale tiles, grows the visible set
// outward from the tile under the map center and requests imagery for new
// tiles. Tile resources are recycled through a pool, and all layers of one
// provider share a template used for visibility tests.
package layer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eak1mov/go-tilestream/fetch"
	"github.com/eak1mov/go-tilestream/frustum"
	"github.com/eak1mov/go-tilestream/metrics"
	"github.com/eak1mov/go-tilestream/projection"
	"github.com/eak1mov/go-tilestream/tile"
	"github.com/eak1mov/go-tilestream/xyz"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrInvalidConfig = errors.New("tilestream: invalid layer config")

type Config struct {
	// URLFormat is the request key template with {z}, {x} and {y} slots.
	URLFormat string `env:"URL_FORMAT" envDefault:"https://tile.openstreetmap.org/{z}/{x}/{y}.png" yaml:"url_format" validate:"required"`

	// TileCacheSizeLimit caps the number of free resources kept for reuse; 0 means unbounded.
	TileCacheSizeLimit int `env:"TILE_CACHE_SIZE_LIMIT" envDefault:"256" yaml:"tile_cache_size_limit" validate:"gte=0"`

	// TileSize is the world-space edge length of a tile.
	TileSize float64 `env:"TILE_SIZE" envDefault:"256" yaml:"tile_size" validate:"gt=0"`

	// RetryFailedFetches re-requests imagery of visible tiles whose last fetch failed.
	RetryFailedFetches bool `env:"RETRY_FAILED_FETCHES" envDefault:"true" yaml:"retry_failed_fetches"`

	// Provider names the tile service; layers of one provider share a template.
	Provider string `env:"PROVIDER" envDefault:"osm" yaml:"provider" validate:"required"`
}

func DefaultConfig() Config {
	return Config{
		URLFormat:          "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		TileCacheSizeLimit: 256,
		TileSize:           256,
		RetryFailedFetches: true,
		Provider:           "osm",
	}
}

// Fetcher is the asynchronous image service used by a layer.
type Fetcher interface {
	Request(key string, target fetch.Target)
	Cancel(key string, target fetch.Target)
}

type Option func(*Layer)

func WithLogger(l *slog.Logger) Option {
	return func(layer *Layer) {
		if l != nil {
			layer.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(layer *Layer) {
		if t != nil {
			layer.tracer = t
		}
	}
}

// WithCenter sets the initial map center.
func WithCenter(c projection.LonLat) Option {
	return func(layer *Layer) { layer.center = c }
}

// Stats describes one refresh cycle and the resource counts after it.
type Stats struct {
	Added   []tile.ID // in discovery order
	Evicted []tile.ID
	Visited int
	Retried int

	Active      int
	Pooled      int
	Constructed int
	Discarded   int
}

// Layer owns the tiles of one map layer. It is not safe for concurrent use;
// all calls are expected from the frame loop.
type Layer struct {
	id      uuid.UUID
	cfg     Config
	proj    projection.Projection
	fetcher Fetcher
	urls    xyz.Template
	logger  *slog.Logger
	tracer  trace.Tracer

	lease    *TemplateLease
	template *Template
	pool     *Pool
	registry *Registry
	visited  map[tile.ID]struct{}

	center       projection.LonLat
	displacement mgl64.Vec3
	applied      mgl64.Vec3
	closed       bool
}

func New(cfg Config, proj projection.Projection, fetcher Fetcher, opts ...Option) (*Layer, error) {
	urls, err := xyz.NewTemplate(cfg.URLFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.TileSize <= 0 {
		return nil, fmt.Errorf("%w: tile size %v", ErrInvalidConfig, cfg.TileSize)
	}
	if cfg.TileSize != proj.TileSize() {
		return nil, fmt.Errorf("%w: tile size %v differs from projection tile size %v", ErrInvalidConfig, cfg.TileSize, proj.TileSize())
	}
	if cfg.TileCacheSizeLimit < 0 {
		return nil, fmt.Errorf("%w: tile cache size limit %d", ErrInvalidConfig, cfg.TileCacheSizeLimit)
	}
	if cfg.Provider == "" {
		return nil, fmt.Errorf("%w: empty provider", ErrInvalidConfig)
	}

	l := &Layer{
		id:       uuid.New(),
		cfg:      cfg,
		proj:     proj,
		fetcher:  fetcher,
		urls:     urls,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("github.com/eak1mov/go-tilestream/layer"),
		registry: NewRegistry(),
		visited:  make(map[tile.ID]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.lease = AcquireTemplate(cfg.Provider)
	l.template = l.lease.Template()
	l.pool = NewPool(l.template, l.id.String())
	l.logger = l.logger.With("layer", l.id.String(), "provider", cfg.Provider)
	l.logger.Debug("tilestream: layer created", "url_format", cfg.URLFormat)
	return l, nil
}

func (l *Layer) ID() uuid.UUID { return l.id }

func (l *Layer) Center() projection.LonLat { return l.center }

// SetCenter moves the map center the visibility search starts from.
func (l *Layer) SetCenter(c projection.LonLat) { l.center = c }

// Translate shifts the whole layer by delta. Active tiles follow on the next Refresh.
func (l *Layer) Translate(delta mgl64.Vec3) {
	l.displacement = l.displacement.Add(delta)
}

// Lookup returns the resource displaying the tile, if the tile is active.
func (l *Layer) Lookup(id tile.ID) (*Resource, bool) {
	return l.registry.TryGet(id)
}

// Tiles returns the active tiles ordered by tile code.
func (l *Layer) Tiles() []tile.ID {
	return l.registry.IDs()
}

// Counts returns the current resource accounting.
func (l *Layer) Counts() Stats {
	var s Stats
	l.fillCounts(&s)
	return s
}

// Refresh brings the layer in sync with the camera frustum and zoom level.
func (l *Layer) Refresh(ctx context.Context, f frustum.Frustum, zoom uint32) Stats {
	if l.closed {
		panic("tilestream: refresh of closed layer")
	}
	if zoom > tile.MaxZoom {
		panic(fmt.Sprintf("tilestream: zoom %d above %d", zoom, tile.MaxZoom))
	}

	_, span := l.tracer.Start(ctx, "layer.Refresh", trace.WithAttributes(
		attribute.String("layer.id", l.id.String()),
		attribute.Int("layer.zoom", int(zoom)),
	))
	defer span.End()

	var stats Stats
	stats.Evicted = l.cleanUp(f, zoom)

	clear(l.visited)
	countX, countY := l.proj.TileCountPerAxis(zoom)
	start := l.proj.CenterTile(l.center, zoom)
	l.grow(&stats, f, zoom, countX, countY, start)

	l.applyDisplacement()
	l.fillCounts(&stats)

	metrics.Refreshes.Inc()
	metrics.TilesDiscovered.Add(float64(len(stats.Added)))
	metrics.TilesEvicted.Add(float64(len(stats.Evicted)))
	metrics.SearchVisits.Observe(float64(stats.Visited))
	metrics.ActiveTiles.WithLabelValues(l.id.String()).Set(float64(stats.Active))
	metrics.PooledTiles.WithLabelValues(l.id.String()).Set(float64(stats.Pooled))

	span.SetAttributes(
		attribute.Int("layer.added", len(stats.Added)),
		attribute.Int("layer.evicted", len(stats.Evicted)),
		attribute.Int("layer.active", stats.Active),
	)
	l.logger.Debug("tilestream: refresh",
		"zoom", zoom,
		"center", start.ID(zoom),
		"added", len(stats.Added),
		"evicted", len(stats.Evicted),
		"visited", stats.Visited,
		"active", stats.Active,
		"pooled", stats.Pooled,
	)
	return stats
}

// CleanUp evicts the tiles that are outside the frustum or not at zoom
// and returns them. Refresh runs it before growing the visible set.
func (l *Layer) CleanUp(f frustum.Frustum, zoom uint32) []tile.ID {
	if l.closed {
		panic("tilestream: cleanup of closed layer")
	}
	return l.cleanUp(f, zoom)
}

// Close evicts every tile, cancelling pending imagery, and releases the shared template.
// Calling Close more than once is a no-op.
func (l *Layer) Close() {
	if l.closed {
		return
	}
	for _, id := range l.registry.IDs() {
		l.evict(id)
	}
	l.lease.Release()
	l.template = nil
	l.closed = true

	metrics.ActiveTiles.DeleteLabelValues(l.id.String())
	metrics.PooledTiles.DeleteLabelValues(l.id.String())
	l.logger.Debug("tilestream: layer closed", "constructed", l.pool.Constructed())
}

func (l *Layer) cleanUp(f frustum.Frustum, zoom uint32) []tile.ID {
	var stale []tile.ID
	for id, r := range l.registry.All() {
		if id.Z != zoom || !f.Intersects(r.Bounds()) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		l.evict(id)
	}
	return stale
}

func (l *Layer) evict(id tile.ID) {
	r := l.registry.Remove(id)
	if r.ImageState() == ImagePending {
		l.fetcher.Cancel(r.Key(), r)
		metrics.ImageCancels.Inc()
	}
	r.releaseImage()

	if limit := l.cfg.TileCacheSizeLimit; limit > 0 && l.pool.Len() >= limit {
		l.pool.Discard(r)
		return
	}
	l.pool.Release(r)
}

// show makes the tile active, or retries its imagery if it is already active.
func (l *Layer) show(stats *Stats, id tile.ID, position mgl64.Vec3) {
	r, ok := l.registry.TryGet(id)
	if ok {
		if r.ImageState() == ImageFailed && l.cfg.RetryFailedFetches {
			l.request(r, "retry")
			stats.Retried++
		}
		return
	}

	r = l.pool.Acquire(position, l.cfg.TileSize)
	r.id = id
	l.registry.Insert(id, r)
	r.enabled = true
	l.request(r, "new")
	stats.Added = append(stats.Added, id)
}

func (l *Layer) request(r *Resource, kind string) {
	key := l.urls.Format(r.id)
	r.pending(key)
	l.fetcher.Request(key, r)
	metrics.ImageRequests.WithLabelValues(kind).Inc()
}

func (l *Layer) applyDisplacement() {
	delta := l.displacement.Sub(l.applied)
	if delta == (mgl64.Vec3{}) {
		return
	}
	for _, r := range l.registry.All() {
		r.position = r.position.Add(delta)
	}
	l.applied = l.displacement
}

func (l *Layer) fillCounts(s *Stats) {
	s.Active = l.registry.Len()
	s.Pooled = l.pool.Len()
	s.Constructed = l.pool.Constructed()
	s.Discarded = l.pool.Discarded()
}
