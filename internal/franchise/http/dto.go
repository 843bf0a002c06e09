package http

import (
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/franchise"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/request"
)

type SubmitApplicationRequest struct {
	TerritoryID        *int64  `json:"territory_id" binding:"omitempty,min=1"`
	FirstName          string  `json:"first_name" binding:"required,max=100"`
	LastName           string  `json:"last_name" binding:"required,max=100"`
	Email              string  `json:"email" binding:"required,email,max=320"`
	Phone              string  `json:"phone" binding:"required,phone"`
	City               *string `json:"city" binding:"omitempty,max=100"`
	State              *string `json:"state" binding:"omitempty,max=50"`
	InvestmentCapital  *string `json:"investment_capital"`
	BusinessExperience *string `json:"business_experience"`
	WhyInterested      *string `json:"why_interested"`
}

type SubmitApplicationResponse struct {
	ID      int64 `json:"id"`
	Success bool  `json:"success"`
}

type ListApplicationsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=new contacted qualified approved rejected"`
}

type ApplicationResponse struct {
	ID                 int64     `json:"id"`
	TerritoryID        *int64    `json:"territory_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	City               *string   `json:"city"`
	State              *string   `json:"state"`
	InvestmentCapital  *string   `json:"investment_capital"`
	BusinessExperience *string   `json:"business_experience"`
	WhyInterested      *string   `json:"why_interested"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

func NewApplicationResponse(a *franchise.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:                 a.ID,
		TerritoryID:        a.TerritoryID,
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		Email:              a.Email,
		Phone:              a.Phone,
		City:               a.City,
		State:              a.State,
		InvestmentCapital:  a.InvestmentCapital,
		BusinessExperience: a.BusinessExperience,
		WhyInterested:      a.WhyInterested,
		Status:             string(a.Status),
		CreatedAt:          a.CreatedAt,
	}
}
