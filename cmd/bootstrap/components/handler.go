package components

import (
	"stockroom/internal/handler"
	"stockroom/internal/handler/api"
	"stockroom/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCartHandler,
		api.NewOrderHandler,
		api.NewCatalogHandler,
		middleware.NewSessionMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
