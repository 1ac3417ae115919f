package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"astrografia/src/logger"
	"astrografia/src/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "astro:chart:"

// Redis shares computed charts between processes.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewRedis connects and pings the server before returning.
func NewRedis(cfg models.MCacheConfig, log *logger.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{
		client: client,
		ttl:    time.Duration(cfg.RedisTTLSeconds) * time.Second,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func redisKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// -----------------------------------------------------------------------------

func (r *Redis) Get(ctx context.Context, key string) (*models.MRawChart, bool) {
	data, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.Logger.Warning("redis get failed: %v", err)
		}
		return nil, false
	}
	var chart models.MRawChart
	if err := json.Unmarshal(data, &chart); err != nil {
		r.Logger.Warning("discarding undecodable cached chart: %v", err)
		return nil, false
	}
	return &chart, true
}

// -----------------------------------------------------------------------------

func (r *Redis) Add(ctx context.Context, key string, chart *models.MRawChart) {
	data, err := json.Marshal(chart)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisKey(key), data, r.ttl).Err(); err != nil {
		r.Logger.Warning("redis set failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

// Len counts cached charts with a SCAN over the key prefix.
func (r *Redis) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n := 0
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		r.Logger.Warning("redis scan failed: %v", err)
	}
	return n
}

// -----------------------------------------------------------------------------

func (r *Redis) Purge(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.Logger.Warning("redis scan failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.Logger.Warning("redis purge failed: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (r *Redis) Close() error {
	return r.client.Close()
}
