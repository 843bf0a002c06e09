package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nekogravitycat/ev-rental-backend/internal/auth"
	"github.com/nekogravitycat/ev-rental-backend/internal/cache"
	"github.com/nekogravitycat/ev-rental-backend/internal/config"
	"github.com/nekogravitycat/ev-rental-backend/internal/db"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/seed"
	"github.com/nekogravitycat/ev-rental-backend/internal/territory"
	"github.com/nekogravitycat/ev-rental-backend/internal/user"
	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

func main() {
	file := flag.String("file", "seed.example.yaml", "path to the seed YAML file")
	tokenFor := flag.String("token-for", "", "print an access token for the seeded user with this open_id")
	flag.Parse()

	cfg, err := config.LoadSeed()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logg := logger.New(logger.Config{Format: logger.FormatText, Service: "seed", Output: os.Stderr})

	data, err := seed.LoadFile(*file)
	if err != nil {
		logg.Fatal("failed to read seed file", "file", *file, "error", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logg.Fatal("failed to connect to db", "error", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logg.Fatal("failed to run migrations", "error", err)
	}

	res, err := seed.Apply(ctx, data, seed.Stores{
		Vehicles:    vehicle.NewPgxRepository(pool),
		Territories: territory.NewPgxRepository(pool),
		Users:       user.NewPgxRepository(pool),
	})
	if err != nil {
		logg.Fatal("seeding failed", "error", err)
	}
	logg.Info("seeded",
		"vehicles", len(res.Vehicles),
		"territories", len(res.Territories),
		"users", len(res.Users),
	)

	// The API may be serving a stale fleet listing
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		if err := cache.NewRedisCache(client, 0).InvalidateFleet(ctx); err != nil {
			logg.Warn("failed to invalidate fleet cache", "error", err)
		}
	}

	if *tokenFor == "" {
		return
	}
	if cfg.JWTSecret == "" {
		logg.Fatal("JWT_SECRET is required to issue a token")
	}
	for _, u := range res.Users {
		if u.OpenID != *tokenFor {
			continue
		}
		email := ""
		if u.Email != nil {
			email = *u.Email
		}
		token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL).GenerateAccessToken(u.ID, email)
		if err != nil {
			logg.Fatal("failed to issue token", "error", err)
		}
		fmt.Println(token)
		return
	}
	logg.Fatal("no seeded user with that open_id", "open_id", *tokenFor)
}
