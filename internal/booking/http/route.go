package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, optionalAuth, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Public Routes ===
	{
		group.POST("", optionalAuth, h.Create)
		group.GET("/availability", h.Availability)
		group.GET("/booked-dates", h.BookedDates)
		group.GET("/:id/payment-status", h.PaymentStatus)
	}

	// === Authenticated Routes ===
	{
		group.GET("/mine", authMiddleware, h.ListMine)
	}

	// === Admin Routes ===
	{
		group.GET("", authMiddleware, adminMiddleware, h.List)
		group.POST("/:id/cancel", authMiddleware, adminMiddleware, h.Cancel)
	}
}
