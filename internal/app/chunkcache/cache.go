package chunkcache

import (
	"context"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"terraforge/internal/app/ports"
	"terraforge/internal/domain/terrain"
)

// Generator is the chunk producer the cache delegates misses to.
type Generator interface {
	Generate(ctx context.Context, coord terrain.ChunkCoord) (terrain.Chunk, error)
	Params() terrain.GenerationParameters
}

type Config struct {
	Generator Generator
	Capacity  int
	Store     ports.ChunkStore     // optional write-through persistence
	Metrics   ports.TerrainMetrics // optional
}

// Cache is a capacity-bounded LRU of generated chunks. Concurrent
// requests for the same uncached coordinate share a single in-flight
// generation; requests for distinct coordinates never serialize on each
// other beyond the LRU's own lookup lock.
type Cache struct {
	gen        Generator
	store      ports.ChunkStore
	metrics    ports.TerrainMetrics
	paramsHash uint64
	capacity   int

	chunks *lru.Cache[terrain.ChunkCoord, terrain.Chunk]
	flight singleflight.Group
}

func New(cfg Config) (*Cache, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("%w: generator is required", terrain.ErrInvalidParameter)
	}
	if cfg.Capacity < 1 {
		return nil, fmt.Errorf("%w: cache capacity %d must be at least 1", terrain.ErrInvalidParameter, cfg.Capacity)
	}

	c := &Cache{
		gen:        cfg.Generator,
		store:      cfg.Store,
		metrics:    cfg.Metrics,
		paramsHash: cfg.Generator.Params().Hash(),
		capacity:   cfg.Capacity,
	}
	chunks, err := lru.NewWithEvict(cfg.Capacity, func(terrain.ChunkCoord, terrain.Chunk) {
		if c.metrics != nil {
			c.metrics.RecordEviction()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", terrain.ErrInvalidParameter, err)
	}
	c.chunks = chunks
	return c, nil
}

// GetOrGenerate returns the cached chunk for coord, generating it at most
// once when absent. A failed generation is never stored, so one bad chunk
// cannot poison other entries.
func (c *Cache) GetOrGenerate(ctx context.Context, coord terrain.ChunkCoord) (terrain.Chunk, error) {
	if chunk, ok := c.chunks.Get(coord); ok {
		if c.metrics != nil {
			c.metrics.RecordHit()
		}
		return chunk, nil
	}
	if c.metrics != nil {
		c.metrics.RecordMiss()
	}

	v, err, _ := c.flight.Do(flightKey(coord), func() (any, error) {
		// A concurrent caller may have filled the entry while this one
		// waited on the flight group.
		if chunk, ok := c.chunks.Get(coord); ok {
			return chunk, nil
		}
		if c.store != nil {
			// A store read failure falls back to regeneration; the store
			// is an accelerator, not a source of truth.
			if chunk, ok, err := c.store.GetChunk(ctx, coord, c.paramsHash); err == nil && ok {
				c.chunks.Add(coord, chunk)
				return chunk, nil
			}
		}

		chunk, err := c.gen.Generate(ctx, coord)
		if err != nil {
			return nil, err
		}
		if c.metrics != nil {
			c.metrics.RecordGeneration()
		}
		if c.store != nil {
			if err := c.store.SaveChunk(ctx, chunk); err != nil {
				return nil, fmt.Errorf("persist chunk (%d, %d): %w", coord.X, coord.Z, err)
			}
		}
		c.chunks.Add(coord, chunk)
		return chunk, nil
	})
	if err != nil {
		return terrain.Chunk{}, err
	}
	return v.(terrain.Chunk), nil
}

// Evict drops coord from the cache. Evicting an absent coordinate is a
// no-op.
func (c *Cache) Evict(coord terrain.ChunkCoord) {
	c.chunks.Remove(coord)
}

// InvalidateAll clears every resident chunk. Required before reusing the
// cache after a generation-parameter change.
func (c *Cache) InvalidateAll() {
	c.chunks.Purge()
}

func (c *Cache) Len() int {
	return c.chunks.Len()
}

// Cap is the configured maximum number of resident chunks.
func (c *Cache) Cap() int {
	return c.capacity
}

// Contains reports residency without refreshing recency.
func (c *Cache) Contains(coord terrain.ChunkCoord) bool {
	return c.chunks.Contains(coord)
}

func flightKey(coord terrain.ChunkCoord) string {
	return strconv.Itoa(coord.X) + "," + strconv.Itoa(coord.Z)
}
