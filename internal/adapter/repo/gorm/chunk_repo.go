package gormrepo

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"terraforge/internal/domain/terrain"
)

// TerrainChunkRepo persists generated chunks keyed by coordinate and the
// parameter hash they were generated under.
type TerrainChunkRepo struct {
	db *gorm.DB
}

func NewTerrainChunkRepo(db *gorm.DB) TerrainChunkRepo {
	return TerrainChunkRepo{db: db}
}

func (r TerrainChunkRepo) GetChunk(ctx context.Context, coord terrain.ChunkCoord, paramsHash uint64) (terrain.Chunk, bool, error) {
	var row terrainChunk
	err := r.db.WithContext(ctx).
		Where(map[string]any{
			"chunk_x":     int32(coord.X),
			"chunk_z":     int32(coord.Z),
			"params_hash": int64(paramsHash),
		}).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return terrain.Chunk{}, false, nil
		}
		return terrain.Chunk{}, false, err
	}
	chunk, err := decodeChunk(row.Payload)
	if err != nil {
		return terrain.Chunk{}, false, err
	}
	return chunk, true, nil
}

func (r TerrainChunkRepo) SaveChunk(ctx context.Context, chunk terrain.Chunk) error {
	b, err := encodeChunk(chunk)
	if err != nil {
		return err
	}
	row := terrainChunk{
		ChunkX:     int32(chunk.Coord.X),
		ChunkZ:     int32(chunk.Coord.Z),
		ParamsHash: int64(chunk.Params.Hash()),
		Payload:    b,
		UpdatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chunk_x"}, {Name: "chunk_z"}, {Name: "params_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
}

func encodeChunk(chunk terrain.Chunk) ([]byte, error) {
	return json.Marshal(chunk)
}

func decodeChunk(data []byte) (terrain.Chunk, error) {
	var out terrain.Chunk
	if err := json.Unmarshal(data, &out); err != nil {
		return terrain.Chunk{}, err
	}
	return out, nil
}
