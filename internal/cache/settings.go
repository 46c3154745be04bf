// Package cache keeps a copy of the global settings for the public
// price and bonus reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/azattello/cargo3589-server/internal/models"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "cargo:settings:global"

// Settings is a read-through cache of the GlobalSettings singleton.
// Get returns (nil, nil) on a miss.
type Settings interface {
	Get(ctx context.Context) (*models.GlobalSettings, error)
	Set(ctx context.Context, gs *models.GlobalSettings) error
	Invalidate(ctx context.Context) error
}

type RedisSettings struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSettings(client *redis.Client, ttl time.Duration) *RedisSettings {
	return &RedisSettings{client: client, ttl: ttl}
}

// NewRedisClient builds the client with the pool settings used across
// services.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func (r *RedisSettings) Get(ctx context.Context) (*models.GlobalSettings, error) {
	raw, err := r.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get settings: %w", err)
	}

	var gs models.GlobalSettings
	if err := json.Unmarshal(raw, &gs); err != nil {
		return nil, fmt.Errorf("decode cached settings: %w", err)
	}
	return &gs, nil
}

func (r *RedisSettings) Set(ctx context.Context, gs *models.GlobalSettings) error {
	raw, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := r.client.Set(ctx, settingsKey, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set settings: %w", err)
	}
	return nil
}

func (r *RedisSettings) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, settingsKey).Err(); err != nil {
		return fmt.Errorf("redis del settings: %w", err)
	}
	return nil
}

// Nop is used when no Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context) (*models.GlobalSettings, error) { return nil, nil }
func (Nop) Set(context.Context, *models.GlobalSettings) error   { return nil }
func (Nop) Invalidate(context.Context) error                    { return nil }
