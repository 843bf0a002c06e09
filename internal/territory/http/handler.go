package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/response"
	"github.com/nekogravitycat/ev-rental-backend/internal/territory"
)

type Handler struct {
	service territory.Service
}

func NewHandler(service territory.Service) *Handler {
	return &Handler{service: service}
}

// GET /v1/territories
func (h *Handler) List(c *gin.Context) {
	var req ListTerritoriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	list := h.service.List
	if req.Available {
		list = h.service.ListAvailable
	}
	territories, err := list(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TerritoryResponse, len(territories))
	for i, t := range territories {
		items[i] = NewTerritoryResponse(t)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GET /v1/territories/:id
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTerritoryResponse(t))
}
