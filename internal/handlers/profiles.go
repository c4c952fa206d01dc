package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"genr8-backend/internal/entity"
)

type ProfilesHandler struct {
	store *entity.Store
}

func NewProfilesHandler(store *entity.Store) *ProfilesHandler {
	return &ProfilesHandler{store: store}
}

// Me godoc
// @Summary     Current profile
// @Description Returns the local profile, creating it with the starting credit balance on first access
// @Tags        auth
// @Produce     json
// @Success     200 {object} models.Profile
// @Router      /auth/me [get]
func (h *ProfilesHandler) Me(c *gin.Context) {
	me, err := h.store.Profiles.Me(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

// UpdateMe merges the body into the profile. Values are stored as sent.
func (h *ProfilesHandler) UpdateMe(c *gin.Context) {
	var patch entity.Record
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}

	me, err := h.store.Profiles.UpdateMe(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}
