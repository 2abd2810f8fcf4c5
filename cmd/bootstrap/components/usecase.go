package components

import (
	"stockroom/internal/infra/events"
	"stockroom/internal/pkg/clock"
	"stockroom/internal/pkg/config"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/queries"
	"stockroom/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
	),
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(uow shared.UnitOfWork, clk clock.Clock, cfg config.Config, stock commands.StockInvalidator) commands.ReservationCommands {
			return commands.NewReservationCommands(uow, clk, cfg.Reservation.HoldTTL, stock)
		},
		func(uow shared.UnitOfWork, clk clock.Clock, cfg config.Config, publisher events.Publisher) commands.OrderCommands {
			return commands.NewOrderCommands(uow, clk, cfg.Reservation.OrderTTL, publisher)
		},
		func(uow shared.UnitOfWork, stock commands.StockInvalidator) commands.InventoryCommands {
			return commands.NewInventoryCommands(uow, stock)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCartQueries,
		queries.NewInventoryQueries,
		queries.NewOrderQueries,
	),
)
