// Package mb provides API for reading tiles and metadata in MBTiles format.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this package.
package mb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/eak1mov/go-tilestream/tile"
)

// Reader implements tile.Reader interface for MBTiles format.
type Reader struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// NewReader creates a new Reader for the given MBTiles file path.
//
// The returned Reader must be closed after use to release database resources.
func NewReader(filePath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Reader{db: db, stmt: stmt}, nil
}

func (r *Reader) Close() error {
	return errors.Join(r.stmt.Close(), r.db.Close())
}

func (r *Reader) ReadMetadata(ctx context.Context) (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := r.db.QueryContext(ctx, "SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

// ZoomRange returns the minzoom and maxzoom metadata values, if both are present.
func ZoomRange(metadata map[string]string) (minZoom, maxZoom uint32, ok bool) {
	minValue, err := strconv.ParseUint(metadata["minzoom"], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	maxValue, err := strconv.ParseUint(metadata["maxzoom"], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint32(minValue), uint32(maxValue), true
}

func (r *Reader) ReadTile(ctx context.Context, tileID tile.ID) ([]byte, error) {
	if !tileID.Valid() {
		return nil, fmt.Errorf("tilestream: invalid tile %v", tileID)
	}
	x, y, z := tileID.X, tileID.Y, tileID.Z
	y = tile.Count(z) - 1 - y // XYZ -> TMS

	var tileData []byte
	if err := r.stmt.QueryRowContext(ctx, z, x, y).Scan(&tileData); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return make([]byte, 0), nil
		}
		return nil, err
	}

	return tileData, nil
}
