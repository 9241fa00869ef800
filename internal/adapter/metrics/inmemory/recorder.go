package inmemory

import "sync"

type Snapshot struct {
	CacheHits   uint64 `json:"cache_hits"`
	CacheMisses uint64 `json:"cache_misses"`
	Generations uint64 `json:"generations"`
	Evictions   uint64 `json:"evictions"`
	Requests    uint64 `json:"requests"`
}

type Recorder struct {
	mu          sync.Mutex
	hits        uint64
	misses      uint64
	generations uint64
	evictions   uint64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *Recorder) RecordMiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

func (r *Recorder) RecordGeneration() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations++
}

func (r *Recorder) RecordEviction() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictions++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		CacheHits:   r.hits,
		CacheMisses: r.misses,
		Generations: r.generations,
		Evictions:   r.evictions,
		Requests:    r.hits + r.misses,
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
