package http

import (
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

type VehicleResponse struct {
	ID           int64     `json:"id"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        *string   `json:"color"`
	RangeMiles   *int      `json:"range_miles"`
	Acceleration *string   `json:"acceleration"`
	TopSpeedMph  *int      `json:"top_speed_mph"`
	DailyRate    string    `json:"daily_rate"`
	WeeklyRate   *string   `json:"weekly_rate"`
	ImageURL     *string   `json:"image_url"`
	Description  *string   `json:"description"`
	Features     []string  `json:"features"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewVehicleResponse(v *vehicle.Vehicle) VehicleResponse {
	resp := VehicleResponse{
		ID:           v.ID,
		Model:        v.Model,
		Year:         v.Year,
		Color:        v.Color,
		RangeMiles:   v.RangeMiles,
		Acceleration: v.Acceleration,
		TopSpeedMph:  v.TopSpeedMph,
		DailyRate:    v.DailyRate.String(),
		ImageURL:     v.ImageURL,
		Description:  v.Description,
		Features:     v.Features,
		Available:    v.Available,
		CreatedAt:    v.CreatedAt,
	}
	if v.WeeklyRate != nil {
		w := v.WeeklyRate.String()
		resp.WeeklyRate = &w
	}
	if resp.Features == nil {
		resp.Features = []string{}
	}
	return resp
}
