// Package seed loads fleet, territory and operator data from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/money"
	"github.com/nekogravitycat/ev-rental-backend/internal/territory"
	"github.com/nekogravitycat/ev-rental-backend/internal/user"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

type File struct {
	Vehicles    []Vehicle   `yaml:"vehicles"`
	Territories []Territory `yaml:"territories"`
	Users       []User      `yaml:"users"`
}

type Vehicle struct {
	Model        string   `yaml:"model"`
	Year         int      `yaml:"year"`
	Color        *string  `yaml:"color"`
	RangeMiles   *int     `yaml:"range_miles"`
	Acceleration *string  `yaml:"acceleration"`
	TopSpeedMph  *int     `yaml:"top_speed_mph"`
	DailyRate    string   `yaml:"daily_rate"`
	WeeklyRate   *string  `yaml:"weekly_rate"`
	ImageURL     *string  `yaml:"image_url"`
	Description  *string  `yaml:"description"`
	Features     []string `yaml:"features"`
	Available    *bool    `yaml:"available"`
}

type Territory struct {
	Name             string   `yaml:"name"`
	City             string   `yaml:"city"`
	State            string   `yaml:"state"`
	ZipCodes         []string `yaml:"zip_codes"`
	Population       *int     `yaml:"population"`
	Status           string   `yaml:"status"`
	InvestmentMin    *string  `yaml:"investment_min"`
	InvestmentMax    *string  `yaml:"investment_max"`
	ProjectedRevenue *string  `yaml:"projected_revenue"`
	Latitude         *float64 `yaml:"latitude"`
	Longitude        *float64 `yaml:"longitude"`
}

type User struct {
	OpenID string  `yaml:"open_id"`
	Name   *string `yaml:"name"`
	Email  *string `yaml:"email"`
	Phone  *string `yaml:"phone"`
	Role   string  `yaml:"role"`
}

// Stores are the write sides the seed needs.
type Stores struct {
	Vehicles    interface{ Create(context.Context, *vehicle.Vehicle) error }
	Territories interface{ Create(context.Context, *territory.Territory) error }
	Users       interface{ Upsert(context.Context, *user.User) error }
}

// Result lists what was written, in file order.
type Result struct {
	Vehicles    []*vehicle.Vehicle
	Territories []*territory.Territory
	Users       []*user.User
}

func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Apply converts every entry first and only writes when the whole file is valid.
func Apply(ctx context.Context, f *File, s Stores) (*Result, error) {
	res := &Result{}

	for i, v := range f.Vehicles {
		converted, err := v.convert()
		if err != nil {
			return nil, fmt.Errorf("vehicles[%d]: %w", i, err)
		}
		res.Vehicles = append(res.Vehicles, converted)
	}
	for i, t := range f.Territories {
		converted, err := t.convert()
		if err != nil {
			return nil, fmt.Errorf("territories[%d]: %w", i, err)
		}
		res.Territories = append(res.Territories, converted)
	}
	for i, u := range f.Users {
		converted, err := u.convert()
		if err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		res.Users = append(res.Users, converted)
	}

	for _, v := range res.Vehicles {
		if err := s.Vehicles.Create(ctx, v); err != nil {
			return nil, fmt.Errorf("create vehicle %q: %w", v.Model, err)
		}
	}
	for _, t := range res.Territories {
		if err := s.Territories.Create(ctx, t); err != nil {
			return nil, fmt.Errorf("create territory %q: %w", t.Name, err)
		}
	}
	for _, u := range res.Users {
		if err := s.Users.Upsert(ctx, u); err != nil {
			return nil, fmt.Errorf("upsert user %q: %w", u.OpenID, err)
		}
	}
	return res, nil
}

func (v Vehicle) convert() (*vehicle.Vehicle, error) {
	if v.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	daily, err := money.ParseMax(v.DailyRate, money.MaxNumeric10)
	if err != nil || daily <= 0 {
		return nil, fmt.Errorf("invalid daily_rate %q", v.DailyRate)
	}
	weekly, err := money.ParseNullable(v.WeeklyRate)
	if err != nil {
		return nil, fmt.Errorf("invalid weekly_rate: %w", err)
	}

	available := true
	if v.Available != nil {
		available = *v.Available
	}
	return &vehicle.Vehicle{
		Model:        v.Model,
		Year:         v.Year,
		Color:        v.Color,
		RangeMiles:   v.RangeMiles,
		Acceleration: v.Acceleration,
		TopSpeedMph:  v.TopSpeedMph,
		DailyRate:    daily,
		WeeklyRate:   weekly,
		ImageURL:     v.ImageURL,
		Description:  v.Description,
		Features:     v.Features,
		Available:    available,
	}, nil
}

func (t Territory) convert() (*territory.Territory, error) {
	if t.Name == "" || t.City == "" || t.State == "" {
		return nil, fmt.Errorf("name, city and state are required")
	}

	status := territory.Status(t.Status)
	switch status {
	case "":
		status = territory.StatusAvailable
	case territory.StatusAvailable, territory.StatusPending, territory.StatusSold:
	default:
		return nil, fmt.Errorf("unknown status %q", t.Status)
	}

	out := &territory.Territory{
		Name:       t.Name,
		City:       t.City,
		State:      t.State,
		ZipCodes:   t.ZipCodes,
		Population: t.Population,
		Status:     status,
		Latitude:   t.Latitude,
		Longitude:  t.Longitude,
	}
	var err error
	if out.InvestmentMin, err = money.ParseNullable(t.InvestmentMin); err != nil {
		return nil, fmt.Errorf("invalid investment_min: %w", err)
	}
	if out.InvestmentMax, err = money.ParseNullable(t.InvestmentMax); err != nil {
		return nil, fmt.Errorf("invalid investment_max: %w", err)
	}
	if out.ProjectedRevenue, err = money.ParseNullable(t.ProjectedRevenue); err != nil {
		return nil, fmt.Errorf("invalid projected_revenue: %w", err)
	}
	return out, nil
}

func (u User) convert() (*user.User, error) {
	if u.OpenID == "" {
		return nil, fmt.Errorf("open_id is required")
	}

	role := user.Role(u.Role)
	switch role {
	case "":
		role = user.RoleUser
	case user.RoleUser, user.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", u.Role)
	}
	return &user.User{OpenID: u.OpenID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: role}, nil
}
