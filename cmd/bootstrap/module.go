package bootstrap

import (
	"stockroom/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	SessionModule,
	EventsModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
	components.WorkerModule,
)
