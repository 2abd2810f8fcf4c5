package components

import (
	"context"
	"log/slog"

	"stockroom/internal/pkg/clock"
	"stockroom/internal/pkg/config"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/shared"
	"stockroom/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		func(
			uow shared.UnitOfWork,
			orders commands.OrderCommands,
			clk clock.Clock,
			cfg config.Config,
			stock commands.StockInvalidator,
			logger *slog.Logger,
		) *worker.Sweeper {
			return worker.NewSweeper(
				uow,
				orders,
				clk,
				cfg.Reservation.SweepInterval,
				cfg.Reservation.OrderSweepInterval,
				stock,
				logger,
			)
		},
	),
	fx.Invoke(startSweeper),
)

func startSweeper(lc fx.Lifecycle, sweeper *worker.Sweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go sweeper.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
