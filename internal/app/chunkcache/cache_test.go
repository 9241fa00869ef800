package chunkcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"terraforge/internal/app/generate"
	"terraforge/internal/app/ports"
	"terraforge/internal/domain/terrain"
)

// countingGenerator wraps a real generator and counts Generate calls.
type countingGenerator struct {
	inner *generate.Generator
	calls atomic.Int64
	delay time.Duration
	err   error
}

func newCountingGenerator(t *testing.T, delay time.Duration) *countingGenerator {
	t.Helper()
	p := terrain.DefaultParameters()
	p.Seed = 77
	p.Resolution = 4
	inner, err := generate.New(p)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return &countingGenerator{inner: inner, delay: delay}
}

func (g *countingGenerator) Generate(ctx context.Context, coord terrain.ChunkCoord) (terrain.Chunk, error) {
	g.calls.Add(1)
	if g.err != nil {
		return terrain.Chunk{}, g.err
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	return g.inner.Generate(ctx, coord)
}

func (g *countingGenerator) Params() terrain.GenerationParameters {
	return g.inner.Params()
}

var _ Generator = (*countingGenerator)(nil)

func TestNew_RejectsBadCapacity(t *testing.T) {
	gen := newCountingGenerator(t, 0)
	if _, err := New(Config{Generator: gen, Capacity: 0}); !errors.Is(err, terrain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for capacity 0, got %v", err)
	}
	if _, err := New(Config{Capacity: 4}); !errors.Is(err, terrain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for nil generator, got %v", err)
	}
}

func TestGetOrGenerate_CacheCoherence(t *testing.T) {
	gen := newCountingGenerator(t, 0)
	cache, err := New(Config{Generator: gen, Capacity: 8})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	coord := terrain.ChunkCoord{X: 3, Z: -2}
	first, err := cache.GetOrGenerate(context.Background(), coord)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := cache.GetOrGenerate(context.Background(), coord)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}

	if got := gen.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one generation, got %d", got)
	}
	if !first.Equal(second) {
		t.Fatalf("cached chunk differs from generated chunk")
	}
}

func TestGetOrGenerate_AtMostOneGenerationUnderContention(t *testing.T) {
	gen := newCountingGenerator(t, 50*time.Millisecond)
	cache, err := New(Config{Generator: gen, Capacity: 8})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	const callers = 16
	coord := terrain.ChunkCoord{X: 9, Z: 9}

	var wg sync.WaitGroup
	errs := make([]error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = cache.GetOrGenerate(context.Background(), coord)
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	if got := gen.calls.Load(); got != 1 {
		t.Fatalf("expected one shared generation across %d callers, got %d", callers, got)
	}
}

func TestEvict_LeastRecentlyUsed(t *testing.T) {
	gen := newCountingGenerator(t, 0)
	cache, err := New(Config{Generator: gen, Capacity: 2})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	ctx := context.Background()
	a := terrain.ChunkCoord{X: 0, Z: 0}
	b := terrain.ChunkCoord{X: 1, Z: 0}
	c := terrain.ChunkCoord{X: 2, Z: 0}

	if _, err := cache.GetOrGenerate(ctx, a); err != nil {
		t.Fatalf("get a: %v", err)
	}
	if _, err := cache.GetOrGenerate(ctx, b); err != nil {
		t.Fatalf("get b: %v", err)
	}
	// Touch a so b becomes the least recently used entry.
	if _, err := cache.GetOrGenerate(ctx, a); err != nil {
		t.Fatalf("touch a: %v", err)
	}
	if _, err := cache.GetOrGenerate(ctx, c); err != nil {
		t.Fatalf("get c: %v", err)
	}

	if !cache.Contains(a) || !cache.Contains(c) {
		t.Fatalf("expected a and c resident after LRU eviction")
	}
	if cache.Contains(b) {
		t.Fatalf("expected least-recently-used b to be evicted")
	}
	if cache.Len() != 2 {
		t.Fatalf("cache length %d want 2", cache.Len())
	}
}

func TestEvict_AbsentCoordinateIsNoOp(t *testing.T) {
	gen := newCountingGenerator(t, 0)
	cache, err := New(Config{Generator: gen, Capacity: 2})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	cache.Evict(terrain.ChunkCoord{X: 42, Z: 42})
	if cache.Len() != 0 {
		t.Fatalf("cache should stay empty")
	}
	if cache.Cap() != 2 {
		t.Fatalf("Cap()=%d want configured capacity 2", cache.Cap())
	}
}

func TestInvalidateAll(t *testing.T) {
	gen := newCountingGenerator(t, 0)
	cache, err := New(Config{Generator: gen, Capacity: 8})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	ctx := context.Background()
	for x := 0; x < 3; x++ {
		if _, err := cache.GetOrGenerate(ctx, terrain.ChunkCoord{X: x}); err != nil {
			t.Fatalf("get %d: %v", x, err)
		}
	}
	cache.InvalidateAll()
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after InvalidateAll, len=%d", cache.Len())
	}

	if _, err := cache.GetOrGenerate(ctx, terrain.ChunkCoord{X: 0}); err != nil {
		t.Fatalf("regenerate after invalidate: %v", err)
	}
	if got := gen.calls.Load(); got != 4 {
		t.Fatalf("expected regeneration after invalidate, calls=%d", got)
	}
}

func TestGetOrGenerate_FailureIsNotCached(t *testing.T) {
	gen := newCountingGenerator(t, 0)
	cache, err := New(Config{Generator: gen, Capacity: 8})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	boom := errors.New("boom")
	gen.err = boom
	coord := terrain.ChunkCoord{X: 1, Z: 1}
	if _, err := cache.GetOrGenerate(context.Background(), coord); !errors.Is(err, boom) {
		t.Fatalf("expected generation error, got %v", err)
	}
	if cache.Contains(coord) {
		t.Fatalf("failed generation must not be cached")
	}

	gen.err = nil
	if _, err := cache.GetOrGenerate(context.Background(), coord); err != nil {
		t.Fatalf("recovery get: %v", err)
	}
	if got := gen.calls.Load(); got != 2 {
		t.Fatalf("expected retry to invoke generator again, calls=%d", got)
	}
}

// recordingStore is a ports.ChunkStore fake tracking reads and writes.
type recordingStore struct {
	mu     sync.Mutex
	chunks map[terrain.ChunkCoord]terrain.Chunk
	saves  int
	reads  int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{chunks: map[terrain.ChunkCoord]terrain.Chunk{}}
}

func (s *recordingStore) GetChunk(_ context.Context, coord terrain.ChunkCoord, _ uint64) (terrain.Chunk, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	chunk, ok := s.chunks[coord]
	return chunk, ok, nil
}

func (s *recordingStore) SaveChunk(_ context.Context, chunk terrain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.chunks[chunk.Coord] = chunk
	return nil
}

var _ ports.ChunkStore = (*recordingStore)(nil)

func TestGetOrGenerate_WriteThroughStore(t *testing.T) {
	gen := newCountingGenerator(t, 0)
	store := newRecordingStore()
	cache, err := New(Config{Generator: gen, Capacity: 2, Store: store})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	ctx := context.Background()
	coord := terrain.ChunkCoord{X: 5, Z: 5}
	chunk, err := cache.GetOrGenerate(ctx, coord)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("expected generated chunk persisted once, saves=%d", store.saves)
	}

	// Drop the in-memory entry; the next read must come from the store,
	// not from a fresh generation.
	cache.Evict(coord)
	again, err := cache.GetOrGenerate(ctx, coord)
	if err != nil {
		t.Fatalf("get after evict: %v", err)
	}
	if got := gen.calls.Load(); got != 1 {
		t.Fatalf("expected store to satisfy the miss, generator calls=%d", got)
	}
	if !chunk.Equal(again) {
		t.Fatalf("store round-trip changed chunk value")
	}
}
