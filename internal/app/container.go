package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/ev-rental-backend/internal/api"
	"github.com/nekogravitycat/ev-rental-backend/internal/auth"
	"github.com/nekogravitycat/ev-rental-backend/internal/booking"
	"github.com/nekogravitycat/ev-rental-backend/internal/cache"
	"github.com/nekogravitycat/ev-rental-backend/internal/config"
	"github.com/nekogravitycat/ev-rental-backend/internal/franchise"
	"github.com/nekogravitycat/ev-rental-backend/internal/notify"
	"github.com/nekogravitycat/ev-rental-backend/internal/payment"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/storage"
	"github.com/nekogravitycat/ev-rental-backend/internal/territory"
	"github.com/nekogravitycat/ev-rental-backend/internal/user"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

// notifyTimeout bounds a single background notification.
const notifyTimeout = 10 * time.Second

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	// Notifier must be drained with Wait before the process exits.
	Notifier *notify.Async

	closers []func() error
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool, log *logger.Logger) (*Container, error) {
	c := &Container{}

	// Init Components
	c.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	var sink notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Kafka.Enabled() {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic)
		c.closers = append(c.closers, kafkaNotifier.Close)
		sink = kafkaNotifier
		log.Info("operator notifications go to kafka", "topic", cfg.Kafka.NotificationsTopic)
	}
	c.Notifier = notify.NewAsync(sink, log, notifyTimeout)

	var (
		fleetCache       vehicle.Cache
		fleetInvalidator vehicle.FleetInvalidator
	)
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		c.closers = append(c.closers, client.Close)
		redisCache := cache.NewRedisCache(client, cfg.FleetCacheTTL)
		fleetCache = redisCache
		fleetInvalidator = redisCache
		log.Info("fleet cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.FleetCacheTTL)
	}

	// User Module
	userService := user.NewService(user.NewPgxRepository(pool))

	// Vehicle Module
	vehicleRepo := vehicle.NewPgxRepository(pool)
	vehicleService := vehicle.NewService(vehicleRepo, fleetCache, log)
	mediaStore, err := storage.NewLocalStorage(cfg.MediaDir)
	if err != nil {
		c.Close()
		return nil, err
	}
	vehiclePhotos := vehicle.NewPhotos(vehicleRepo, mediaStore, fleetInvalidator, log)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(pool)
	bookingService := booking.NewService(bookingRepo, vehicleRepo, c.Notifier, log)

	// Payment Module
	paymentService := payment.NewService(bookingRepo, vehicleRepo, gateway, c.Notifier, log, payment.Config{
		DepositCents: cfg.DepositCents,
		Currency:     cfg.Currency,
		PublicOrigin: cfg.PublicOrigin,
	})

	// Territory Module
	territoryRepo := territory.NewPgxRepository(pool)
	territoryService := territory.NewService(territoryRepo, log)

	// Franchise Module
	franchiseService := franchise.NewService(franchise.NewPgxRepository(pool), territoryRepo, c.Notifier, log)

	// Router
	router, err := api.NewRouter(api.Config{
		IsProduction:     cfg.IsProduction,
		ProdOrigins:      cfg.ProdOrigins,
		Logger:           log,
		UserService:      userService,
		VehicleService:   vehicleService,
		VehiclePhotos:    vehiclePhotos,
		BookingService:   bookingService,
		PaymentService:   paymentService,
		TerritoryService: territoryService,
		FranchiseService: franchiseService,
		JWTManager:       c.JWTManager,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Router = router

	return c, nil
}

// Close releases the broker and cache clients.
func (c *Container) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
