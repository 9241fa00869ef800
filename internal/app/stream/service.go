package stream

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"terraforge/internal/app/chunkcache"
	"terraforge/internal/app/ports"
	"terraforge/internal/domain/terrain"
)

type State string

const (
	StateIdle     State = "idle"
	StateActive   State = "active"
	StateTerminal State = "terminal"
)

const defaultWorkers = 4

type Config struct {
	Cache   *chunkcache.Cache
	Params  terrain.GenerationParameters
	Radius  int // chunk-grid Chebyshev radius kept resident around the viewer
	Workers int // max concurrent generations per update, 0 means default
}

// Delta reports the residency change of one update so the renderer can
// adjust its scene incrementally.
type Delta struct {
	Loaded   []terrain.ChunkCoord `json:"loaded"`
	Unloaded []terrain.ChunkCoord `json:"unloaded"`
}

// Service streams terrain around a moving viewer: each Update loads the
// chunks inside the view radius and evicts the ones that fell outside it.
type Service struct {
	cache   *chunkcache.Cache
	params  terrain.GenerationParameters
	radius  int
	workers int

	baseCtx context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	state    State
	resident map[terrain.ChunkCoord]struct{}
}

func New(cfg Config) (*Service, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("%w: cache is required", terrain.ErrInvalidParameter)
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Radius < 0 {
		return nil, fmt.Errorf("%w: view radius %d must not be negative", terrain.ErrInvalidParameter, cfg.Radius)
	}
	// The full viewport must fit in the cache or every update would evict
	// chunks it just loaded.
	if viewport := (2*cfg.Radius + 1) * (2*cfg.Radius + 1); cfg.Cache.Cap() < viewport {
		return nil, fmt.Errorf("%w: cache capacity %d below viewport of %d chunks", terrain.ErrInvalidParameter, cfg.Cache.Cap(), viewport)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	baseCtx, stop := context.WithCancel(context.Background())
	return &Service{
		cache:    cfg.Cache,
		params:   cfg.Params,
		radius:   cfg.Radius,
		workers:  workers,
		baseCtx:  baseCtx,
		stop:     stop,
		state:    StateIdle,
		resident: make(map[terrain.ChunkCoord]struct{}),
	}, nil
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) Params() terrain.GenerationParameters {
	return s.params
}

// Update recomputes the wanted chunk set around the viewer, generates the
// newly wanted coordinates, evicts the departed ones, and returns the
// delta. The viewer's Y is ignored for grid purposes.
func (s *Service) Update(ctx context.Context, viewer terrain.WorldPos) (Delta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTerminal {
		return Delta{}, ports.ErrServiceStopped
	}
	s.state = StateActive

	center := terrain.ChunkCoordAt(viewer, s.params.ChunkSize)
	want := make(map[terrain.ChunkCoord]struct{}, (2*s.radius+1)*(2*s.radius+1))
	for dz := -s.radius; dz <= s.radius; dz++ {
		for dx := -s.radius; dx <= s.radius; dx++ {
			want[terrain.ChunkCoord{X: center.X + dx, Z: center.Z + dz}] = struct{}{}
		}
	}

	var loaded []terrain.ChunkCoord
	for coord := range want {
		if _, ok := s.resident[coord]; !ok {
			loaded = append(loaded, coord)
		}
	}
	var unloaded []terrain.ChunkCoord
	for coord := range s.resident {
		if _, ok := want[coord]; !ok {
			unloaded = append(unloaded, coord)
		}
	}

	gctx, cancel := s.joinShutdown(ctx)
	defer cancel()
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, coord := range loaded {
		coord := coord
		g.Go(func() error {
			_, err := s.cache.GetOrGenerate(gctx, coord)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Delta{}, err
	}

	for _, coord := range unloaded {
		s.cache.Evict(coord)
		delete(s.resident, coord)
	}
	for _, coord := range loaded {
		s.resident[coord] = struct{}{}
	}

	sortCoords(loaded)
	sortCoords(unloaded)
	return Delta{Loaded: loaded, Unloaded: unloaded}, nil
}

// Chunk returns the full contents of a resident chunk for delivery to the
// renderer. Coordinates outside the current residency set are not served.
func (s *Service) Chunk(ctx context.Context, coord terrain.ChunkCoord) (terrain.Chunk, error) {
	s.mu.Lock()
	if s.state == StateTerminal {
		s.mu.Unlock()
		return terrain.Chunk{}, ports.ErrServiceStopped
	}
	_, resident := s.resident[coord]
	s.mu.Unlock()

	if !resident {
		return terrain.Chunk{}, fmt.Errorf("chunk (%d, %d): %w", coord.X, coord.Z, ports.ErrNotFound)
	}
	return s.cache.GetOrGenerate(ctx, coord)
}

// Shutdown moves the service to its terminal state and cancels any
// in-flight generation. It is idempotent; Update and Chunk fail with
// ports.ErrServiceStopped afterwards.
func (s *Service) Shutdown() {
	// Cancel before taking the lock: an in-flight Update holds it while
	// generating and only releases it once its context aborts.
	s.stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateTerminal
}

// joinShutdown derives a context from the caller's that is additionally
// canceled when Shutdown fires, so a stopping service short-circuits
// pending generation.
func (s *Service) joinShutdown(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	unhook := context.AfterFunc(s.baseCtx, cancel)
	return ctx, func() {
		unhook()
		cancel()
	}
}

func sortCoords(coords []terrain.ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Z != coords[j].Z {
			return coords[i].Z < coords[j].Z
		}
		return coords[i].X < coords[j].X
	})
}
