package bootstrap

import (
	"context"

	"stockroom/internal/infra/db"
	"stockroom/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, pool); err != nil {
		cleanup()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
