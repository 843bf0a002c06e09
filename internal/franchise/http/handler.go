package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/ev-rental-backend/internal/franchise"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/response"
)

type Handler struct {
	service franchise.Service
}

func NewHandler(service franchise.Service) *Handler {
	return &Handler{service: service}
}

// POST /v1/franchise/applications
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	a, err := h.service.Submit(c.Request.Context(), franchise.SubmitRequest{
		TerritoryID:        req.TerritoryID,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		City:               req.City,
		State:              req.State,
		InvestmentCapital:  req.InvestmentCapital,
		BusinessExperience: req.BusinessExperience,
		WhyInterested:      req.WhyInterested,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, SubmitApplicationResponse{ID: a.ID, Success: true})
}

// GET /v1/franchise/applications
func (h *Handler) List(c *gin.Context) {
	var req ListApplicationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	apps, total, err := h.service.List(c.Request.Context(), franchise.Filter{
		Status:   franchise.Status(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ApplicationResponse, len(apps))
	for i, a := range apps {
		items[i] = NewApplicationResponse(a)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}
