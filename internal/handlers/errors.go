package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"genr8-backend/internal/entity"
	"genr8-backend/internal/models"
	"genr8-backend/internal/services"
)

// respondError maps domain errors onto status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found", Message: err.Error()})
	case errors.Is(err, services.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: message})
}
