package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/eak1mov/go-tilestream/config"
	"github.com/eak1mov/go-tilestream/fetch"
	"github.com/eak1mov/go-tilestream/mb"
	"github.com/eak1mov/go-tilestream/tile"
	"github.com/eak1mov/go-tilestream/xyz"
)

func deduceFormat(format, path string) string {
	if format == "" && path == "" {
		return "http"
	}
	if format == "" && strings.HasSuffix(path, ".mbtiles") {
		return "mbtiles"
	}
	if format == "" && (strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")) {
		return "http"
	}
	if format == "" {
		return "xyz"
	}
	return format
}

// openSource returns the imagery source for path. Requests are keyed by the
// layer URL format; tileset sources parse the keys back into tile IDs.
// An MBTiles source must cover zoom according to its metadata.
func openSource(ctx context.Context, format, path string, zoom uint32, cfg *config.Config) (fetch.Source, io.Closer, error) {
	var reader tile.Reader
	var closer io.Closer
	switch deduceFormat(format, path) {
	case "http":
		return fetch.NewHTTPSourceParams(fetch.HTTPParams{
			UserAgent: cfg.Fetch.UserAgent,
			Retries:   cfg.Fetch.Retries,
			Backoff:   cfg.Fetch.Backoff,
		}), nil, nil
	case "mbtiles":
		r, err := mb.NewReader(path)
		if err != nil {
			return nil, nil, err
		}
		if err := checkZoom(ctx, r, zoom); err != nil {
			r.Close()
			return nil, nil, err
		}
		reader, closer = r, r
	case "xyz":
		r, err := xyz.NewReader(path)
		if err != nil {
			return nil, nil, err
		}
		reader = r
	default:
		return nil, nil, fmt.Errorf("invalid source format: %q", format)
	}

	keys, err := xyz.NewTemplate(cfg.Layer.URLFormat)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}
	return fetch.NewReaderSource(reader, keys), closer, nil
}

func checkZoom(ctx context.Context, r *mb.Reader, zoom uint32) error {
	metadata, err := r.ReadMetadata(ctx)
	if err != nil {
		return err
	}
	minZoom, maxZoom, ok := mb.ZoomRange(metadata)
	if ok && (zoom < minZoom || zoom > maxZoom) {
		return fmt.Errorf("zoom %d outside of tileset zoom range [%d, %d]", zoom, minZoom, maxZoom)
	}
	return nil
}
