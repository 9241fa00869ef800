package ports

import (
	"context"

	"terraforge/internal/domain/terrain"
)

// ChunkStore persists generated chunks below the in-memory cache. Rows
// are keyed by coordinate plus the parameter hash they were generated
// under, so stale rows from earlier parameter sets are never served.
type ChunkStore interface {
	GetChunk(ctx context.Context, coord terrain.ChunkCoord, paramsHash uint64) (terrain.Chunk, bool, error)
	SaveChunk(ctx context.Context, chunk terrain.Chunk) error
}
