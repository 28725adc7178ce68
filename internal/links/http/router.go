package http

import "github.com/gin-gonic/gin"

// Register attaches link routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)

	rg.GET("/search", h.search)
	rg.GET("/categories", h.categories)
	rg.GET("/categories/:category", h.byCategory)
	rg.GET("/stats", h.stats)
	rg.GET("/metrics", h.metrics)

	rg.GET("/export", h.export)
	rg.POST("/import", h.importSnapshot)
	rg.POST("/migrate", h.migrate)

	rg.GET("/events", h.streamEvents)
}
