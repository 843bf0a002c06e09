package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/ev-rental-backend/internal/auth"
	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/ev-rental-backend/internal/booking/http"
	"github.com/nekogravitycat/ev-rental-backend/internal/franchise"
	franchiseHttp "github.com/nekogravitycat/ev-rental-backend/internal/franchise/http"
	"github.com/nekogravitycat/ev-rental-backend/internal/payment"
	paymentHttp "github.com/nekogravitycat/ev-rental-backend/internal/payment/http"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/validation"
	"github.com/nekogravitycat/ev-rental-backend/internal/territory"
	territoryHttp "github.com/nekogravitycat/ev-rental-backend/internal/territory/http"
	"github.com/nekogravitycat/ev-rental-backend/internal/user"
	userHttp "github.com/nekogravitycat/ev-rental-backend/internal/user/http"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
	vehicleHttp "github.com/nekogravitycat/ev-rental-backend/internal/vehicle/http"
)

// Config holds the services the router exposes.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *logger.Logger

	UserService      user.Service
	VehicleService   vehicle.Service
	VehiclePhotos    *vehicle.Photos
	BookingService   booking.Service
	PaymentService   *payment.Service
	TerritoryService territory.Service
	FranchiseService franchise.Service
	JWTManager       *auth.JWTManager
}

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8081", // Swagger
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (request id, access log, CORS, auth) and registering routes for each module.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(RequestID(), AccessLog(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = devOrigins
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	config.ExposeHeaders = []string{RequestIDHeader}
	r.Use(cors.New(config))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	optionalAuth := auth.OptionalAuth(cfg.JWTManager)
	adminMiddleware := RequireAdmin(cfg.UserService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHttp.NewHandler(cfg.UserService), authMiddleware)
		vehicleHttp.RegisterRoutes(v1, vehicleHttp.NewHandler(cfg.VehicleService, cfg.VehiclePhotos), authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHttp.NewHandler(cfg.BookingService), optionalAuth, authMiddleware, adminMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHttp.NewHandler(cfg.PaymentService, cfg.Logger))
		territoryHttp.RegisterRoutes(v1, territoryHttp.NewHandler(cfg.TerritoryService))
		franchiseHttp.RegisterRoutes(v1, franchiseHttp.NewHandler(cfg.FranchiseService), authMiddleware, adminMiddleware)
	}

	return r, nil
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
