package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/safar/shop-backoffice/internal/config"
	"github.com/safar/shop-backoffice/internal/log"
	"go.uber.org/zap"
)

// RedisPublisher PUBLISHes envelopes on a single channel so other processes
// (admin socket gateways, workers) can subscribe.
type RedisPublisher struct {
	Client  redis.UniversalClient
	Channel string
}

func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.L.Info("redis client connected", zap.String("addr", cfg.Addr))
	return client, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event string, payload any) error {
	body, err := encode(event, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	if err := p.Client.Publish(ctx, p.Channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", event, err)
	}
	return nil
}
