package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/infra/session"
	"storefront/internal/pkg/config"
	"storefront/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedisClient,
		fx.Annotate(
			NewCartStore,
			fx.As(new(shared.CartStore)),
		),
	),
)

func NewRedisClient(lc fx.Lifecycle, cfg config.Config) redis.UniversalClient {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to ping redis: %w", err)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewCartStore(client redis.UniversalClient, cfg config.Config, logger *slog.Logger) *session.RedisStore {
	return session.NewRedisStore(client, cfg.Session.TTL, logger)
}
