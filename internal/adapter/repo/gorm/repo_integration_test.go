package gormrepo

import (
	"context"
	"os"
	"testing"

	"terraforge/internal/app/ports"
	"terraforge/internal/domain/terrain"
)

var _ ports.ChunkStore = TerrainChunkRepo{}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TERRAFORGE_DB_DSN")
	if dsn == "" {
		t.Skip("TERRAFORGE_DB_DSN is required for integration test")
	}
	return dsn
}

func testChunk(seed int64, height float64) terrain.Chunk {
	p := terrain.DefaultParameters()
	p.Seed = seed
	p.Resolution = 2
	return terrain.Chunk{
		Coord:  terrain.ChunkCoord{X: -4, Z: 11},
		Params: p,
		Columns: []terrain.Column{
			{X: -64, Z: 176, Height: height, Extent: height + 8},
			{X: -56, Z: 176, Height: height + 1, Extent: height + 9},
			{X: -64, Z: 184, Height: height + 2, Extent: height + 10},
			{X: -56, Z: 184, Height: height + 3, Extent: height + 11},
		},
	}
}

func TestTerrainChunkRepo_RoundTrip(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, "../../../../migrations"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	chunk := testChunk(901, 5)
	_ = db.Exec("DELETE FROM terrain_chunks WHERE chunk_x = ? AND chunk_z = ?", chunk.Coord.X, chunk.Coord.Z).Error

	repo := NewTerrainChunkRepo(db)
	if _, ok, err := repo.GetChunk(ctx, chunk.Coord, chunk.Params.Hash()); err != nil || ok {
		t.Fatalf("expected empty row before save: ok=%v err=%v", ok, err)
	}

	if err := repo.SaveChunk(ctx, chunk); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := repo.GetChunk(ctx, chunk.Coord, chunk.Params.Hash())
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !got.Equal(chunk) {
		t.Fatalf("round-trip changed chunk: got %+v want %+v", got, chunk)
	}
}

func TestTerrainChunkRepo_UpsertReplacesPayload(t *testing.T) {
	dsn := requireDSN(t)
	db, err := OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	ctx := context.Background()
	if err := ApplyMigrations(ctx, db, "../../../../migrations"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	first := testChunk(902, 1)
	second := testChunk(902, 42)
	_ = db.Exec("DELETE FROM terrain_chunks WHERE chunk_x = ? AND chunk_z = ?", first.Coord.X, first.Coord.Z).Error

	repo := NewTerrainChunkRepo(db)
	if err := repo.SaveChunk(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.SaveChunk(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, ok, err := repo.GetChunk(ctx, second.Coord, second.Params.Hash())
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !got.Equal(second) {
		t.Fatalf("upsert did not replace payload")
	}
}
