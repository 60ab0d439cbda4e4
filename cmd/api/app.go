package main

import (
	"context"
	"fmt"

	"github.com/safar/shop-backoffice/internal/api"
	"github.com/safar/shop-backoffice/internal/config"
	"github.com/safar/shop-backoffice/internal/database"
	"github.com/safar/shop-backoffice/internal/log"
	"github.com/safar/shop-backoffice/internal/notify"
	"github.com/safar/shop-backoffice/internal/order"
	"go.uber.org/zap"
)

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	hub := notify.NewHub()
	publishers := notify.Multi{hub}
	if cfg.Redis.Addr != "" {
		client, err := notify.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		publishers = append(publishers, &notify.RedisPublisher{Client: client, Channel: cfg.Redis.Channel})
	} else {
		log.L.Info("redis disabled, notifications stay in process")
	}

	svc := order.NewService(db, publishers, cfg)
	engine := api.NewRouter(&api.Handlers{
		Order:        &api.Order{Service: svc},
		Catalog:      &api.Catalog{Service: svc},
		Notification: &api.Notification{Service: svc, Hub: hub},
		DB:           db,
		JWTSecret:    []byte(cfg.Auth.JWTSecret),
	})

	return api.Run(ctx, &cfg.Server, engine)
}

func migrate(ctx context.Context, cfg *config.Config, direction string) error {
	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	n, err := database.Migrate(ctx, db, direction)
	if err != nil {
		return err
	}
	log.L.Info("migrations applied", zap.String("direction", direction), zap.Int("files", n))
	return nil
}
