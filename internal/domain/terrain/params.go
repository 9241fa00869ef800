package terrain

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
)

var ErrInvalidParameter = errors.New("invalid generation parameter")

// GenerationParameters fully determine the terrain surface. They are
// immutable for the life of a service instance; changing any field means
// building a new generator and invalidating every cached chunk.
type GenerationParameters struct {
	Seed        int64   `json:"seed"`
	Frequency   float64 `json:"frequency"`
	Amplitude   float64 `json:"amplitude"`
	Offset      float64 `json:"offset"`
	ChunkSize   float64 `json:"chunk_size"`
	Resolution  int     `json:"resolution"`
	Octaves     int     `json:"octaves"`
	Lacunarity  float64 `json:"lacunarity"`
	Persistence float64 `json:"persistence"`
}

func DefaultParameters() GenerationParameters {
	return GenerationParameters{
		Seed:        0,
		Frequency:   0.05,
		Amplitude:   8,
		Offset:      0,
		ChunkSize:   16,
		Resolution:  16,
		Octaves:     1,
		Lacunarity:  2,
		Persistence: 0.5,
	}
}

func (p GenerationParameters) Validate() error {
	if !isFinite(p.Frequency) || p.Frequency <= 0 {
		return fmt.Errorf("%w: frequency %v must be positive", ErrInvalidParameter, p.Frequency)
	}
	if !isFinite(p.Amplitude) || p.Amplitude <= 0 {
		return fmt.Errorf("%w: amplitude %v must be positive", ErrInvalidParameter, p.Amplitude)
	}
	if !isFinite(p.Offset) {
		return fmt.Errorf("%w: offset must be finite", ErrInvalidParameter)
	}
	if !isFinite(p.ChunkSize) || p.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %v must be positive", ErrInvalidParameter, p.ChunkSize)
	}
	if p.Resolution <= 0 {
		return fmt.Errorf("%w: resolution %d must be positive", ErrInvalidParameter, p.Resolution)
	}
	if p.Octaves <= 0 {
		return fmt.Errorf("%w: octaves %d must be positive", ErrInvalidParameter, p.Octaves)
	}
	if p.Octaves > 1 {
		if !isFinite(p.Lacunarity) || p.Lacunarity <= 0 {
			return fmt.Errorf("%w: lacunarity %v must be positive", ErrInvalidParameter, p.Lacunarity)
		}
		if !isFinite(p.Persistence) || p.Persistence <= 0 {
			return fmt.Errorf("%w: persistence %v must be positive", ErrInvalidParameter, p.Persistence)
		}
	}
	return nil
}

// Hash is a stable digest of every field, used by persistent stores to
// key chunks so rows generated under old parameters are never served.
func (p GenerationParameters) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%g|%g|%g|%g|%d|%d|%g|%g",
		p.Seed, p.Frequency, p.Amplitude, p.Offset,
		p.ChunkSize, p.Resolution, p.Octaves, p.Lacunarity, p.Persistence)
	return h.Sum64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
