package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/eak1mov/go-tilestream/config"
	"github.com/eak1mov/go-tilestream/fetch"
	"github.com/eak1mov/go-tilestream/layer"
	"github.com/eak1mov/go-tilestream/projection"
	"github.com/eak1mov/go-tilestream/tile"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type simulateCmd struct {
	configPath  string
	inputFormat string
	inputPath   string
	lon, lat    float64
	zoom        uint
	frames      int
	step        float64
	width       float64
	height      float64
	interval    time.Duration
}

func (c *simulateCmd) Name() string     { return "simulate" }
func (c *simulateCmd) Synopsis() string { return "stream tiles for a camera panning across the map" }
func (c *simulateCmd) Usage() string {
	return "tilestream simulate [-config <file>] [-i <path> [-if <format>]] -lon <deg> -lat <deg> -z <zoom>\n"
}
func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "YAML config file (default: TILESTREAM_* environment)")
	f.StringVar(&c.inputPath, "i", "", "Tile source: mbtiles file or xyz pattern (default: download by URL format)")
	f.StringVar(&c.inputFormat, "if", "", "Tile source format (mbtiles, xyz, http)")
	f.Float64Var(&c.lon, "lon", 0, "Longitude of the start position")
	f.Float64Var(&c.lat, "lat", 0, "Latitude of the start position")
	f.UintVar(&c.zoom, "z", 4, "Zoom level")
	f.IntVar(&c.frames, "frames", 100, "Number of frames")
	f.Float64Var(&c.step, "step", 0.1, "Eastward camera movement per frame, in tiles")
	f.Float64Var(&c.width, "width", 4, "View width in tiles")
	f.Float64Var(&c.height, "height", 3, "View height in tiles")
	f.DurationVar(&c.interval, "interval", 16*time.Millisecond, "Frame interval")
}

func (c *simulateCmd) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.LoadFile(c.configPath)
	}
	return config.New()
}

func (c *simulateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.zoom > tile.MaxZoom {
		log.Printf("zoom %d above %d", c.zoom, tile.MaxZoom)
		return subcommands.ExitUsageError
	}
	zoom := uint32(c.zoom)

	cfg, err := c.loadConfig()
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	zl, err := newLogger(cfg.Logger)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}
	defer zl.Sync()
	logger := slogger(zl)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	shutdownTelemetry, err := setupTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		zl.Error("failed to set up telemetry", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			zl.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	if cfg.Metrics.Addr != "" {
		go serveMetrics(ctx, cfg.Metrics.Addr, logger)
	}

	source, closer, err := openSource(ctx, c.inputFormat, c.inputPath, zoom, cfg)
	if err != nil {
		zl.Error("failed to open tile source", zap.Error(err))
		return subcommands.ExitFailure
	}
	if closer != nil {
		defer closer.Close()
	}

	service := fetch.NewService(source,
		fetch.WithWorkers(cfg.Fetch.Workers),
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithLogger(logger),
	)
	defer service.Close()

	start := projection.LonLat{Lon: c.lon, Lat: c.lat}
	proj := projection.NewWebMercator(cfg.Layer.TileSize, start)
	l, err := layer.New(cfg.Layer, proj, service, layer.WithLogger(logger), layer.WithCenter(start))
	if err != nil {
		zl.Error("failed to create layer", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer l.Close()

	var added, evicted, delivered int
	size := cfg.Layer.TileSize
	view := topDown(mgl64.Vec3{}, c.width*size/2, c.height*size/2)
	bar := progressbar.NewOptions(c.frames, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

frames:
	for frame := range c.frames {
		target := mgl64.Vec3{float64(frame) * c.step * size, 0, 0}
		l.SetCenter(groundCenter(proj, target.X(), target.Z(), zoom))
		stats := l.Refresh(ctx, view.Translate(target), zoom)
		added += len(stats.Added)
		evicted += len(stats.Evicted)
		delivered += service.Dispatch()
		bar.Add(1)

		select {
		case <-ctx.Done():
			break frames
		case <-ticker.C:
		}
	}
	delivered += service.Dispatch()
	bar.Finish()
	fmt.Println()

	counts := l.Counts()
	loaded := 0
	for _, tileID := range l.Tiles() {
		if r, ok := l.Lookup(tileID); ok && r.HasImagery() {
			loaded++
		}
	}
	zl.Info("simulation finished",
		zap.Int("added", added),
		zap.Int("evicted", evicted),
		zap.Int("delivered", delivered),
		zap.Int("active", counts.Active),
		zap.Int("loaded", loaded),
		zap.Int("pooled", counts.Pooled),
		zap.Int("constructed", counts.Constructed),
		zap.Int("discarded", counts.Discarded),
		zap.Int("pending", service.Pending()),
	)
	return subcommands.ExitSuccess
}
