package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app/server"

	httpadapter "terraforge/internal/adapter/http"
	metricsinmem "terraforge/internal/adapter/metrics/inmemory"
	gormrepo "terraforge/internal/adapter/repo/gorm"
	"terraforge/internal/app/chunkcache"
	"terraforge/internal/app/generate"
	"terraforge/internal/app/ports"
	"terraforge/internal/app/stream"
	"terraforge/internal/domain/terrain"
)

func main() {
	params := paramsFromEnv()
	if err := params.Validate(); err != nil {
		log.Fatalf("generation parameters: %v", err)
	}

	gen, err := generate.New(params)
	if err != nil {
		log.Fatalf("build generator: %v", err)
	}
	recorder := metricsinmem.NewRecorder()

	cache, err := chunkcache.New(chunkcache.Config{
		Generator: gen,
		Capacity:  intEnv("TERRAFORGE_CACHE_CAPACITY", 256),
		Store:     buildChunkStoreFromEnv(),
		Metrics:   recorder,
	})
	if err != nil {
		log.Fatalf("build chunk cache: %v", err)
	}

	svc, err := stream.New(stream.Config{
		Cache:   cache,
		Params:  params,
		Radius:  intEnv("TERRAFORGE_VIEW_RADIUS", 3),
		Workers: intEnv("TERRAFORGE_WORKERS", 4),
	})
	if err != nil {
		log.Fatalf("build terrain service: %v", err)
	}
	defer svc.Shutdown()

	h := httpadapter.Handler{Service: svc, Metrics: recorder}

	addr := strings.TrimSpace(os.Getenv("TERRAFORGE_ADDR"))
	if addr == "" {
		addr = ":8080"
	}
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	log.Printf("terraforge server listening on %s (seed=%d chunk_size=%g resolution=%d)",
		addr, params.Seed, params.ChunkSize, params.Resolution)
	s.Spin()
}

func paramsFromEnv() terrain.GenerationParameters {
	p := terrain.DefaultParameters()
	p.Seed = int64(intEnv("TERRAFORGE_SEED", int(p.Seed)))
	p.Frequency = floatEnv("TERRAFORGE_FREQUENCY", p.Frequency)
	p.Amplitude = floatEnv("TERRAFORGE_AMPLITUDE", p.Amplitude)
	p.Offset = floatEnv("TERRAFORGE_OFFSET", p.Offset)
	p.ChunkSize = floatEnv("TERRAFORGE_CHUNK_SIZE", p.ChunkSize)
	p.Resolution = intEnv("TERRAFORGE_RESOLUTION", p.Resolution)
	p.Octaves = intEnv("TERRAFORGE_OCTAVES", p.Octaves)
	p.Lacunarity = floatEnv("TERRAFORGE_LACUNARITY", p.Lacunarity)
	p.Persistence = floatEnv("TERRAFORGE_PERSISTENCE", p.Persistence)
	return p
}

func buildChunkStoreFromEnv() ports.ChunkStore {
	dsn := strings.TrimSpace(os.Getenv("TERRAFORGE_DB_DSN"))
	if dsn == "" {
		return nil
	}
	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if dir := strings.TrimSpace(os.Getenv("TERRAFORGE_MIGRATIONS_DIR")); dir != "" {
		if err := gormrepo.ApplyMigrations(context.Background(), db, dir); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}
	return gormrepo.NewTerrainChunkRepo(db)
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
