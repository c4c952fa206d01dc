package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"genr8-backend/internal/entity"
	"genr8-backend/internal/generation"
	"genr8-backend/internal/services"
)

type RouterDeps struct {
	Store      *entity.Store
	Dispatcher *generation.Dispatcher
	Studio     *services.Studio
	// Backend is reported by /health.
	Backend string
	// Middleware runs on every /api/v1 route, in order.
	Middleware []gin.HandlerFunc
}

// RegisterRoutes mounts /health, /metrics and the /api/v1 group on router.
func RegisterRoutes(router *gin.Engine, deps RouterDeps) {
	router.GET("/health", HealthHandler(deps.Backend))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(deps.Middleware...)

	profiles := NewProfilesHandler(deps.Store)
	api.GET("/auth/me", profiles.Me)
	api.PATCH("/auth/me", profiles.UpdateMe)

	entities := NewEntitiesHandler(deps.Store)
	api.POST("/entities/:entity", entities.Create)
	api.GET("/entities/:entity", entities.List)
	api.POST("/entities/:entity/filter", entities.Filter)
	api.GET("/entities/:entity/:id", entities.Get)
	api.PATCH("/entities/:entity/:id", entities.Update)
	api.DELETE("/entities/:entity/:id", entities.Delete)

	integrations := NewIntegrationsHandler(deps.Dispatcher, deps.Studio)
	api.POST("/integrations/generate-image", integrations.GenerateImage)
	api.POST("/integrations/upload-file", integrations.UploadFile)

	studio := NewStudioHandler(deps.Studio)
	api.POST("/studio/generate", studio.Generate)
	api.POST("/studio/variation", studio.Variation)
	api.POST("/studio/edit", studio.Edit)
	api.POST("/studio/save", studio.Save)
	api.GET("/studio/library", studio.Library)
	api.GET("/studio/recent", studio.Recent)
	api.GET("/studio/licenses", studio.Licenses)
	api.POST("/studio/assets/:id/favorite", studio.ToggleFavorite)
	api.POST("/studio/assets/:id/export", studio.Export)
	api.GET("/studio/projects", studio.ListProjects)
	api.POST("/studio/projects", studio.CreateProject)
	api.DELETE("/studio/projects/:id", studio.DeleteProject)
}
