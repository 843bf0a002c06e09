package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/vehicles")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.GET("/photos/:name", h.ServePhoto)
		group.POST("/:id/photo", authMiddleware, adminMiddleware, h.UploadPhoto)
	}
}
