package gormrepo

import "time"

// terrainChunk mirrors the terrain_chunks table. The payload column holds
// the full chunk (coord, params, columns) as JSON so a row round-trips to
// a value-identical chunk.
type terrainChunk struct {
	ChunkX     int32     `gorm:"column:chunk_x;primaryKey"`
	ChunkZ     int32     `gorm:"column:chunk_z;primaryKey"`
	ParamsHash int64     `gorm:"column:params_hash;primaryKey"`
	Payload    []byte    `gorm:"column:payload"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (terrainChunk) TableName() string {
	return "terrain_chunks"
}
