package terrain

import (
	"fmt"

	"terraforge/internal/domain/noise"
)

// HeightField maps horizontal world coordinates to a terrain height by
// shaping a noise sampler with the generation parameters:
//
//	height = offset + amplitude * noise(x*frequency, z*frequency)
//
// It is a pure function of its parameters and seed.
type HeightField struct {
	params  GenerationParameters
	sampler *noise.Sampler
}

func NewHeightField(params GenerationParameters) (*HeightField, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &HeightField{params: params, sampler: noise.New(params.Seed)}, nil
}

func (f *HeightField) Params() GenerationParameters {
	return f.params
}

// Height evaluates the field at (x, z). The result is always finite and
// lies within [offset-amplitude, offset+amplitude].
func (f *HeightField) Height(x, z float64) (float64, error) {
	var (
		n   float64
		err error
	)
	if f.params.Octaves > 1 {
		n, err = f.sampler.Octave(x*f.params.Frequency, z*f.params.Frequency,
			f.params.Octaves, f.params.Lacunarity, f.params.Persistence)
	} else {
		n, err = f.sampler.Sample(x*f.params.Frequency, z*f.params.Frequency)
	}
	if err != nil {
		return 0, fmt.Errorf("sample height at (%v, %v): %w", x, z, err)
	}
	return f.params.Offset + f.params.Amplitude*n, nil
}

// Floor is the lowest height the field can produce. Columns extend from
// here up to their sampled height so the rendered terrain has no holes.
func (f *HeightField) Floor() float64 {
	return f.params.Offset - f.params.Amplitude
}
