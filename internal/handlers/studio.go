package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"genr8-backend/internal/models"
	"genr8-backend/internal/services"
)

type StudioHandler struct {
	studio *services.Studio
}

func NewStudioHandler(studio *services.Studio) *StudioHandler {
	return &StudioHandler{studio: studio}
}

// Generate godoc
// @Summary     Generate a batch of drafts
// @Description Runs count generations (default 4) and charges one credit each. Drafts are not saved.
// @Tags        studio
// @Accept      json
// @Produce     json
// @Param       request body models.GenerateRequest true "Generation request"
// @Success     200 {object} models.Batch
// @Failure     400 {object} models.ErrorResponse
// @Router      /studio/generate [post]
func (h *StudioHandler) Generate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	batch, err := h.studio.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *StudioHandler) Variation(c *gin.Context) {
	var req models.VariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	batch, err := h.studio.Variation(c.Request.Context(), req.Draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *StudioHandler) Edit(c *gin.Context) {
	var req models.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	batch, err := h.studio.Edit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// Save godoc
// @Summary     Save drafts to a project
// @Description Saves drafts as assets of project_id, or of a new project named new_project_name
// @Tags        studio
// @Accept      json
// @Produce     json
// @Param       request body models.SaveRequest true "Drafts and target"
// @Success     201 {object} models.SaveResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /studio/save [post]
func (h *StudioHandler) Save(c *gin.Context) {
	var req models.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.studio.SaveToProject(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *StudioHandler) Library(c *gin.Context) {
	var q models.LibraryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	assets, err := h.studio.Library(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *StudioHandler) Recent(c *gin.Context) {
	n := 0
	if raw := c.Query("limit"); raw != "" {
		var err error
		if n, err = strconv.Atoi(raw); err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
	}

	assets, err := h.studio.Recent(c.Request.Context(), n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *StudioHandler) ToggleFavorite(c *gin.Context) {
	asset, err := h.studio.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

// Export godoc
// @Summary     Export an asset
// @Description Records the license on the asset and returns where to download it. License surcharges are informational.
// @Tags        studio
// @Accept      json
// @Produce     json
// @Param       id path string true "Asset ID"
// @Param       request body models.ExportRequest false "License and format"
// @Success     200 {object} models.ExportResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /studio/assets/{id}/export [post]
func (h *StudioHandler) Export(c *gin.Context) {
	// the body is optional and may arrive chunked; an empty one means the defaults
	var req models.ExportRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err.Error())
			return
		}
	}

	result, err := h.studio.Export(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StudioHandler) Licenses(c *gin.Context) {
	c.JSON(http.StatusOK, h.studio.Licenses())
}

func (h *StudioHandler) ListProjects(c *gin.Context) {
	projects, err := h.studio.Projects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *StudioHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	project, err := h.studio.CreateProject(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// DeleteProject removes the project. Its assets are kept.
func (h *StudioHandler) DeleteProject(c *gin.Context) {
	if err := h.studio.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
