package bootstrap

import (
	"context"
	"log/slog"

	"stockroom/internal/infra/events"
	"stockroom/internal/pkg/config"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewPublisher,
	),
)

// NewPublisher wires the orders topic producer. Without brokers configured
// the finalizer still runs; events are just dropped.
func NewPublisher(lc fx.Lifecycle, cfg config.Config) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Brokers[0] == "" {
		slog.Info("kafka brokers not configured, order events disabled")
		return events.NopPublisher{}
	}

	publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	return publisher
}
