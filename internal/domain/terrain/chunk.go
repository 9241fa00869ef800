package terrain

// Column describes the terrain at one grid cell: the world-space cell
// position, the sampled surface height, and the solid vertical extent
// from the heightfield floor up to that height. The renderer draws each
// column as a single scaled block.
type Column struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Height float64 `json:"height"`
	Extent float64 `json:"extent"`
}

// Chunk is an immutable Resolution×Resolution grid of columns, row-major
// with Z as the outer axis. Regeneration produces a new Chunk value, never
// an in-place edit.
type Chunk struct {
	Coord   ChunkCoord           `json:"coord"`
	Params  GenerationParameters `json:"params"`
	Columns []Column             `json:"columns"`
}

// Column returns the column at cell (i, j), i along X and j along Z.
func (c Chunk) Column(i, j int) Column {
	return c.Columns[j*c.Params.Resolution+i]
}

// Equal reports element-wise value equality.
func (c Chunk) Equal(other Chunk) bool {
	if c.Coord != other.Coord || c.Params != other.Params || len(c.Columns) != len(other.Columns) {
		return false
	}
	for i := range c.Columns {
		if c.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}
