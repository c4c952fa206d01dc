package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"genr8-backend/internal/generation"
	"genr8-backend/internal/models"
	"genr8-backend/internal/services"
)

// IntegrationsHandler serves the low-level generate and upload calls.
type IntegrationsHandler struct {
	dispatcher *generation.Dispatcher
	studio     *services.Studio
}

func NewIntegrationsHandler(dispatcher *generation.Dispatcher, studio *services.Studio) *IntegrationsHandler {
	return &IntegrationsHandler{dispatcher: dispatcher, studio: studio}
}

// GenerateImage godoc
// @Summary     Generate one image
// @Description Always answers 200. When the provider fails the url is a placeholder and error explains why.
// @Tags        integrations
// @Accept      json
// @Produce     json
// @Param       request body models.GenerateImageRequest true "Prompt"
// @Success     200 {object} models.GenerateImageResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /integrations/generate-image [post]
func (h *IntegrationsHandler) GenerateImage(c *gin.Context) {
	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	img := h.dispatcher.GenerateImage(c.Request.Context(), generation.Request{
		Prompt:            req.Prompt,
		ExistingImageURLs: req.ExistingImageURLs,
	})
	c.JSON(http.StatusOK, models.GenerateImageResponse{ID: img.ID, URL: img.URL, Error: img.Error})
}

// UploadFile godoc
// @Summary     Upload a file
// @Description Returns the file as a data URL
// @Tags        integrations
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "File"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /integrations/upload-file [post]
func (h *IntegrationsHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fileHeader.Size > services.MaxUploadBytes {
		badRequest(c, "file is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxUploadBytes+1))
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.studio.UploadFile(c.Request.Context(), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.UploadResponse{FileURL: url})
}
