package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"SugarMill.twin/internal/models"
	"github.com/go-redis/redis/v8"
)

// RedisPublisher keeps the latest snapshot under a key and announces every
// new snapshot on a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	key     string
	channel string
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr, password string, db int, millID, channel string, ttl time.Duration, logger *slog.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}
	logger.Info("connected to redis", "addr", addr, "channel", channel)
	return &RedisPublisher{
		client:  client,
		key:     stateKey(millID),
		channel: channel,
		ttl:     ttl,
		logger:  logger,
	}, nil
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Publish stores the snapshot and publishes it in one pipeline.
func (p *RedisPublisher) Publish(ctx context.Context, state models.TwinState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	pipe := p.client.TxPipeline()
	pipe.Set(ctx, p.key, payload, p.ttl)
	pipe.Publish(ctx, p.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func stateKey(millID string) string {
	return fmt.Sprintf("twin:%s:state", millID)
}
