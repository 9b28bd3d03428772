package bootstrap

import (
	"context"
	"log/slog"

	"storefront/internal/infra/publisher"
	"storefront/internal/infra/repository"
	"storefront/internal/infra/uow"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/config"

	"go.uber.org/fx"
)

var PublisherModule = fx.Module("publisher",
	fx.Invoke(StartOutboxPublisher),
)

// StartOutboxPublisher runs the notification outbox relay when Kafka brokers
// are configured. Without brokers jobs stay queued.
func StartOutboxPublisher(lc fx.Lifecycle, cfg config.Config, pg *uow.PostgresUoW, clk clock.Clock, logger *slog.Logger) {
	if !cfg.Kafka.Enabled() {
		logger.Info("kafka brokers not configured, outbox publisher disabled")
		return
	}

	p := publisher.NewOutboxPublisher(
		pg,
		repository.NewNotificationRepository(logger),
		publisher.NewKafkaWriter(cfg.Kafka.Brokers),
		clk,
		publisher.Options{
			Interval:  cfg.Kafka.PollInterval,
			BatchSize: cfg.Kafka.BatchSize,
		},
		logger,
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			p.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return p.Stop()
		},
	})
}
