package inmemory

import (
	"sync"
	"testing"

	"terraforge/internal/app/ports"
)

var _ ports.TerrainMetrics = (*Recorder)(nil)

func TestRecorder_Snapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordHit()
	r.RecordHit()
	r.RecordMiss()
	r.RecordGeneration()
	r.RecordEviction()

	got := r.Snapshot()
	want := Snapshot{CacheHits: 2, CacheMisses: 1, Generations: 1, Evictions: 1, Requests: 3}
	if got != want {
		t.Fatalf("snapshot %+v want %+v", got, want)
	}
}

func TestRecorder_ConcurrentRecording(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordHit()
				r.RecordMiss()
			}
		}()
	}
	wg.Wait()

	got := r.Snapshot()
	if got.CacheHits != 800 || got.CacheMisses != 800 || got.Requests != 1600 {
		t.Fatalf("lost updates under concurrency: %+v", got)
	}
}
