package mb_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-tilestream/mb"
	"github.com/eak1mov/go-tilestream/tile"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func createTileset(t *testing.T, tiles map[tile.ID][]byte, metadata map[string]string) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), "tiles.mbtiles")
	db, err := sql.Open("sqlite3", filePath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE metadata (name TEXT, value TEXT);
		CREATE TABLE tiles (zoom_level INTEGER, tile_column INTEGER, tile_row INTEGER, tile_data BLOB);
	`)
	require.NoError(t, err)

	for name, value := range metadata {
		_, err := db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", name, value)
		require.NoError(t, err)
	}
	for tileID, tileData := range tiles {
		row := tile.Count(tileID.Z) - 1 - tileID.Y
		_, err := db.Exec("INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)",
			tileID.Z, tileID.X, row, tileData)
		require.NoError(t, err)
	}
	return filePath
}

func TestReader(t *testing.T) {
	tiles := map[tile.ID][]byte{
		{X: 0, Y: 0, Z: 0}: []byte("tile000"),
		{X: 1, Y: 0, Z: 1}: []byte("tile101"),
		{X: 2, Y: 5, Z: 3}: []byte("tile253"),
	}
	filePath := createTileset(t, tiles, map[string]string{
		"format":  "png",
		"minzoom": "0",
		"maxzoom": "3",
	})

	reader, err := mb.NewReader(filePath)
	require.NoError(t, err)
	defer reader.Close()

	ctx := context.Background()
	for tileID, want := range tiles {
		got, err := reader.ReadTile(ctx, tileID)
		require.NoError(t, err)
		require.Equal(t, want, got, "ReadTile(%v)", tileID)
	}

	missing, err := reader.ReadTile(ctx, tile.ID{X: 2, Y: 2, Z: 3})
	require.NoError(t, err)
	require.Empty(t, missing)

	_, err = reader.ReadTile(ctx, tile.ID{X: 8, Y: 0, Z: 3})
	require.Error(t, err)

	metadata, err := reader.ReadMetadata(ctx)
	require.NoError(t, err)
	require.Equal(t, "png", metadata["format"])

	minZoom, maxZoom, ok := mb.ZoomRange(metadata)
	require.True(t, ok)
	require.Equal(t, uint32(0), minZoom)
	require.Equal(t, uint32(3), maxZoom)
}

func TestZoomRangeMissing(t *testing.T) {
	_, _, ok := mb.ZoomRange(map[string]string{"minzoom": "2"})
	require.False(t, ok)
}
