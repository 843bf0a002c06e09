package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/franchise/applications")
	{
		group.POST("", h.Submit)
		group.GET("", authMiddleware, adminMiddleware, h.List)
	}
}
