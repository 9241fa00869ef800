package ports

// TerrainMetrics counts cache and generation activity.
type TerrainMetrics interface {
	RecordHit()
	RecordMiss()
	RecordGeneration()
	RecordEviction()
}
