package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"terraforge/internal/app/ports"
	"terraforge/internal/app/stream"
	"terraforge/internal/domain/noise"
	"terraforge/internal/domain/terrain"
)

// TerrainService is the slice of stream.Service the handler needs.
type TerrainService interface {
	Update(ctx context.Context, viewer terrain.WorldPos) (stream.Delta, error)
	Chunk(ctx context.Context, coord terrain.ChunkCoord) (terrain.Chunk, error)
	Params() terrain.GenerationParameters
}

type Handler struct {
	Service TerrainService
	Metrics metricsSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api/terrain")
	api.POST("/update", h.update)
	api.GET("/chunk", h.chunk)
	api.GET("/params", h.params)

	s.GET("/ops/metrics", h.metrics)
}

type updateRequest struct {
	Viewer terrain.WorldPos `json:"viewer"`
}

func (h Handler) update(c context.Context, ctx *app.RequestContext) {
	var body updateRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	delta, err := h.Service.Update(c, body.Viewer)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, delta)
}

func (h Handler) chunk(c context.Context, ctx *app.RequestContext) {
	x, errX := strconv.Atoi(string(ctx.Query("x")))
	z, errZ := strconv.Atoi(string(ctx.Query("z")))
	if errX != nil || errZ != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_coord", "x and z must be integer chunk coordinates")
		return
	}

	chunk, err := h.Service.Chunk(c, terrain.ChunkCoord{X: x, Z: z})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, chunk)
}

func (h Handler) params(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.Service.Params())
}

type metricsSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) metrics(_ context.Context, ctx *app.RequestContext) {
	if h.Metrics == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "metrics recorder not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.Metrics.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ports.ErrServiceStopped):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "service_stopped", err.Error())
	case errors.Is(err, terrain.ErrInvalidParameter):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_parameter", err.Error())
	case errors.Is(err, noise.ErrInvalidInput):
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
