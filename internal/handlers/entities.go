package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"genr8-backend/internal/entity"
	"genr8-backend/internal/models"
)

// EntitiesHandler exposes the raw entity store over HTTP, one route group per
// collection.
type EntitiesHandler struct {
	store *entity.Store
}

func NewEntitiesHandler(store *entity.Store) *EntitiesHandler {
	return &EntitiesHandler{store: store}
}

func (h *EntitiesHandler) collection(c *gin.Context) (*entity.Collection, bool) {
	col, err := h.store.Collection(c.Param("entity"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return col, true
}

// Create godoc
// @Summary     Create an entity
// @Tags        entities
// @Accept      json
// @Produce     json
// @Param       entity path string true "projects or assets"
// @Success     201 {object} object
// @Failure     400 {object} models.ErrorResponse
// @Router      /entities/{entity} [post]
func (h *EntitiesHandler) Create(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}

	var data entity.Record
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, err.Error())
		return
	}

	rec, err := col.Create(c.Request.Context(), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// List returns every record, ordered by ?sort= and capped by ?limit=.
func (h *EntitiesHandler) List(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}

	q := entity.Query{Sort: c.Query("sort")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
		q.Limit = limit
	}

	h.respondFilter(c, col, q)
}

func (h *EntitiesHandler) Filter(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}

	var req models.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	h.respondFilter(c, col, entity.Query{Match: req.Query, Sort: req.Sort, Limit: req.Limit})
}

func (h *EntitiesHandler) respondFilter(c *gin.Context, col *entity.Collection, q entity.Query) {
	records, err := col.Filter(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *EntitiesHandler) Get(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}

	rec, err := col.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EntitiesHandler) Update(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}

	var patch entity.Record
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}

	rec, err := col.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EntitiesHandler) Delete(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}

	if err := col.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
