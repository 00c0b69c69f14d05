package xyz

import (
	"context"
	"os"

	"github.com/eak1mov/go-tilestream/tile"
)

// Reader implements tile.Reader interface for tiles in XYZ directory format.
type Reader struct {
	template Template
}

// NewReader creates a new Reader for the given file pattern (e.g. "/home/user/tiles/{z}/{x}/{y}.png").
func NewReader(filePattern string) (*Reader, error) {
	template, err := NewTemplate(filePattern)
	if err != nil {
		return nil, err
	}
	return &Reader{template}, nil
}

func (r *Reader) ReadTile(ctx context.Context, tileID tile.ID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tileData, err := os.ReadFile(r.template.Format(tileID))
	if os.IsNotExist(err) {
		return make([]byte, 0), nil
	}
	if err != nil {
		return nil, err
	}
	return tileData, nil
}
