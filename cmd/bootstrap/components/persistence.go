package components

import (
	"stockroom/internal/infra/cache"
	"stockroom/internal/infra/readstore"
	"stockroom/internal/infra/repository"
	"stockroom/internal/infra/uow"
	"stockroom/internal/pkg/config"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/queries"
	"stockroom/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Read stores
		fx.Annotate(
			readstore.NewCartReadStore,
			fx.As(new(queries.CartReadStore)),
		),
		fx.Annotate(
			readstore.NewInventoryReadStore,
			fx.As(new(queries.InventoryReadStore)),
		),
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		// Stock badge cache, also the invalidation hook for the engine
		fx.Annotate(
			NewStockCache,
			fx.As(new(queries.StockCache)),
			fx.As(new(commands.StockInvalidator)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) repository.DBTX {
	return pool
}

func NewStockCache(cfg config.Config) *cache.StockCache {
	return cache.New(cfg.Redis.Addr, cfg.Redis.StockCacheTTL)
}
