package terrain

// ChunkCoord identifies a chunk in the 2D chunk grid.
type ChunkCoord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// WorldPos is a world-space position. Y is carried for callers that
// track a full viewer position but is ignored by the chunk-grid mapping.
type WorldPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ChunkCoordAt maps a world position to the coordinate of the chunk
// containing it. Chunk boundaries are [coord*size, (coord+1)*size).
func ChunkCoordAt(pos WorldPos, chunkSize float64) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(pos.X, chunkSize),
		Z: floorDiv(pos.Z, chunkSize),
	}
}

func floorDiv(v, size float64) int {
	q := v / size
	n := int(q)
	if q < float64(n) {
		n--
	}
	return n
}

// ChebyshevDist is the chessboard distance between two chunk coordinates.
func ChebyshevDist(a, b ChunkCoord) int {
	dx := absInt(a.X - b.X)
	dz := absInt(a.Z - b.Z)
	if dx > dz {
		return dx
	}
	return dz
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
