package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/eak1mov/go-tilestream/fetch"
	"github.com/eak1mov/go-tilestream/layer"
	"github.com/eak1mov/go-tilestream/projection"
	"github.com/eak1mov/go-tilestream/tile"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/subcommands"
)

type visibleCmd struct {
	lon, lat      float64
	zoom          uint
	width, height float64
	tileSize      float64
}

func (c *visibleCmd) Name() string     { return "visible" }
func (c *visibleCmd) Synopsis() string { return "list the tiles a top-down camera sees" }
func (c *visibleCmd) Usage() string {
	return "tilestream visible -lon <deg> -lat <deg> -z <zoom> [-width <tiles> -height <tiles>]\n"
}
func (c *visibleCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.lon, "lon", 0, "Longitude of the view center")
	f.Float64Var(&c.lat, "lat", 0, "Latitude of the view center")
	f.UintVar(&c.zoom, "z", 2, "Zoom level")
	f.Float64Var(&c.width, "width", 3, "View width in tiles")
	f.Float64Var(&c.height, "height", 2, "View height in tiles")
	f.Float64Var(&c.tileSize, "tile-size", 256, "Tile size in world units")
}

type nopFetcher struct{}

func (nopFetcher) Request(string, fetch.Target) {}
func (nopFetcher) Cancel(string, fetch.Target)  {}

func (c *visibleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.zoom > tile.MaxZoom {
		log.Printf("zoom %d above %d", c.zoom, tile.MaxZoom)
		return subcommands.ExitUsageError
	}

	center := projection.LonLat{Lon: c.lon, Lat: c.lat}
	proj := projection.NewWebMercator(c.tileSize, center)

	cfg := layer.DefaultConfig()
	cfg.TileSize = c.tileSize
	cfg.Provider = "visible"
	l, err := layer.New(cfg, proj, nopFetcher{}, layer.WithCenter(center))
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer l.Close()

	f := topDown(mgl64.Vec3{}, c.width*c.tileSize/2, c.height*c.tileSize/2)
	stats := l.Refresh(ctx, f, uint32(c.zoom))

	for _, tileID := range stats.Added {
		r, _ := l.Lookup(tileID)
		pos := r.Position()
		fmt.Printf("%v\t%.1f\t%.1f\n", tileID, pos.X(), pos.Z())
	}
	log.Printf("%d tiles visible, %d visited", len(stats.Added), stats.Visited)
	return subcommands.ExitSuccess
}
