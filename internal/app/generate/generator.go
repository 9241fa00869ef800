package generate

import (
	"context"
	"fmt"

	"terraforge/internal/domain/terrain"
)

// Generator produces chunks from a heightfield. Generation is a pure
// function of (coord, params): the same inputs always yield value-equal
// chunks, and distinct coordinates may generate concurrently because no
// shared state is written.
type Generator struct {
	params terrain.GenerationParameters
	field  *terrain.HeightField
}

func New(params terrain.GenerationParameters) (*Generator, error) {
	field, err := terrain.NewHeightField(params)
	if err != nil {
		return nil, err
	}
	return &Generator{params: params, field: field}, nil
}

func (g *Generator) Params() terrain.GenerationParameters {
	return g.params
}

// Generate evaluates the heightfield at every cell of the chunk and packs
// the results row-major (Z outer, X inner). A sampling failure or context
// cancellation aborts the whole chunk; partial chunks are never returned.
func (g *Generator) Generate(ctx context.Context, coord terrain.ChunkCoord) (terrain.Chunk, error) {
	res := g.params.Resolution
	cell := g.params.ChunkSize / float64(res)
	baseX := float64(coord.X) * g.params.ChunkSize
	baseZ := float64(coord.Z) * g.params.ChunkSize
	floor := g.field.Floor()

	columns := make([]terrain.Column, 0, res*res)
	for j := 0; j < res; j++ {
		if err := ctx.Err(); err != nil {
			return terrain.Chunk{}, fmt.Errorf("generate chunk (%d, %d): %w", coord.X, coord.Z, err)
		}
		worldZ := baseZ + float64(j)*cell
		for i := 0; i < res; i++ {
			worldX := baseX + float64(i)*cell
			h, err := g.field.Height(worldX, worldZ)
			if err != nil {
				return terrain.Chunk{}, fmt.Errorf("generate chunk (%d, %d): %w", coord.X, coord.Z, err)
			}
			columns = append(columns, terrain.Column{
				X:      worldX,
				Z:      worldZ,
				Height: h,
				Extent: h - floor,
			})
		}
	}

	return terrain.Chunk{Coord: coord, Params: g.params, Columns: columns}, nil
}
