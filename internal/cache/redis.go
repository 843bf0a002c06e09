package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/ev-rental-backend/internal/vehicle"
)

const fleetKey = "cache:fleet"

// RedisCache keeps the available-fleet listing in Redis.
type RedisCache struct {
	client   redis.Cmdable
	fleetTTL time.Duration
}

// NewRedisClient opens a client for addr. Connectivity is checked lazily.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func NewRedisCache(client redis.Cmdable, fleetTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, fleetTTL: fleetTTL}
}

func (c *RedisCache) GetVehicles(ctx context.Context) ([]*vehicle.Vehicle, bool, error) {
	data, err := c.client.Get(ctx, fleetKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var vehicles []*vehicle.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, false, err
	}
	return vehicles, true, nil
}

func (c *RedisCache) SetVehicles(ctx context.Context, vehicles []*vehicle.Vehicle) error {
	payload, err := json.Marshal(vehicles)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fleetKey, payload, c.fleetTTL).Err()
}

// InvalidateFleet drops the cached listing, e.g. after seeding.
func (c *RedisCache) InvalidateFleet(ctx context.Context) error {
	return c.client.Del(ctx, fleetKey).Err()
}
