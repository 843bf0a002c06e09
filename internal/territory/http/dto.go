package http

import (
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
	"github.com/nekogravitycat/ev-rental-backend/internal/territory"
)

type ListTerritoriesRequest struct {
	Available bool `form:"available"`
}

type TerritoryResponse struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	ZipCodes         []string `json:"zip_codes"`
	Population       *int     `json:"population"`
	Status           string   `json:"status"`
	InvestmentMin    *string  `json:"investment_min"`
	InvestmentMax    *string  `json:"investment_max"`
	ProjectedRevenue *string  `json:"projected_revenue"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
}

func NewTerritoryResponse(t *territory.Territory) TerritoryResponse {
	zips := t.ZipCodes
	if zips == nil {
		zips = []string{}
	}
	return TerritoryResponse{
		ID:               t.ID,
		Name:             t.Name,
		City:             t.City,
		State:            t.State,
		ZipCodes:         zips,
		Population:       t.Population,
		Status:           string(t.Status),
		InvestmentMin:    money.Nullable(t.InvestmentMin),
		InvestmentMax:    money.Nullable(t.InvestmentMax),
		ProjectedRevenue: money.Nullable(t.ProjectedRevenue),
		Latitude:         t.Latitude,
		Longitude:        t.Longitude,
	}
}
