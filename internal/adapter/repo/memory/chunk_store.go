package memory

import (
	"context"
	"sync"

	"terraforge/internal/domain/terrain"
)

type chunkKey struct {
	X          int
	Z          int
	ParamsHash uint64
}

// ChunkStore is an in-memory ports.ChunkStore for tests and store-less
// deployments.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[chunkKey]terrain.Chunk
}

func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[chunkKey]terrain.Chunk)}
}

func (s *ChunkStore) GetChunk(_ context.Context, coord terrain.ChunkCoord, paramsHash uint64) (terrain.Chunk, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[chunkKey{X: coord.X, Z: coord.Z, ParamsHash: paramsHash}]
	return chunk, ok, nil
}

func (s *ChunkStore) SaveChunk(_ context.Context, chunk terrain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := chunkKey{X: chunk.Coord.X, Z: chunk.Coord.Z, ParamsHash: chunk.Params.Hash()}
	s.chunks[key] = chunk
	return nil
}

func (s *ChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
