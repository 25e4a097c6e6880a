package http

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"polygon-service/internal/http/middleware"
	"polygon-service/internal/model"
	"polygon-service/internal/service"
)

var idPattern = regexp.MustCompile(`^\d+$`)

type Handler struct {
	polygonService *service.PolygonService
	log            zerolog.Logger
}

func NewHandler(polygonService *service.PolygonService, log zerolog.Logger) *Handler {
	return &Handler{
		polygonService: polygonService,
		log:            log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	polygons := r.Group("/polygons")
	{
		polygons.GET("", h.listPolygons)
		polygons.POST("", h.createPolygon)
		polygons.GET("/:id", h.getPolygon)
		polygons.PUT("/:id", h.updatePolygon)
		polygons.DELETE("/:id", h.deletePolygon)
	}
}

func (h *Handler) listPolygons(c *gin.Context) {
	respond(h, c, h.polygonService.GetAll(c.Request.Context()))
}

func (h *Handler) createPolygon(c *gin.Context) {
	var req service.CreatePolygonInput
	if err := bindJSON(c, &req); err != nil {
		respond(h, c, service.InvalidBody(model.Polygon{}, err))
		return
	}

	respond(h, c, h.polygonService.Create(c.Request.Context(), req))
}

func (h *Handler) getPolygon(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		respond(h, c, service.InvalidID(model.Polygon{}))
		return
	}

	respond(h, c, h.polygonService.GetByID(c.Request.Context(), id))
}

func (h *Handler) updatePolygon(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		respond(h, c, service.InvalidID(model.Polygon{}))
		return
	}

	var req service.UpdatePolygonInput
	if err := bindJSON(c, &req); err != nil {
		respond(h, c, service.InvalidBody(model.Polygon{}, err))
		return
	}

	respond(h, c, h.polygonService.Update(c.Request.Context(), id, req))
}

func (h *Handler) deletePolygon(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		respond(h, c, service.InvalidID(model.Polygon{}))
		return
	}

	respond(h, c, h.polygonService.Delete(c.Request.Context(), id))
}

// respond writes the envelope with its own status code. Server-side
// failures are logged; client errors are left to the request logger.
func respond[T any](h *Handler, c *gin.Context, resp service.Response[T]) {
	if resp.StatusCode >= http.StatusInternalServerError {
		h.log.Error().
			Str("request_id", middleware.GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg(resp.Message)
	}
	c.JSON(resp.StatusCode, resp)
}

// bindJSON decodes the request body. An empty body decodes as {}.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func parseID(raw string) (int64, bool) {
	if !idPattern.MatchString(raw) {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
