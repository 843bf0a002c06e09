package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/payments")

	// === Public Routes ===
	{
		group.POST("/checkout", h.CreateCheckout)
		// Authenticated by the provider signature, not by JWT.
		group.POST("/webhook", h.Webhook)
	}
}
