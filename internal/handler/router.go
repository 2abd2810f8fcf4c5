package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/handler/api"
	"stockroom/internal/handler/middleware"
	"stockroom/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	cartHandler *api.CartHandler,
	orderHandler *api.OrderHandler,
	catalogHandler *api.CatalogHandler,
	sessionMiddleware *middleware.SessionMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cartHandler, orderHandler, catalogHandler, sessionMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cartHandler *api.CartHandler,
	orderHandler *api.OrderHandler,
	catalogHandler *api.CatalogHandler,
	sessionMiddleware *middleware.SessionMiddleware,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		// Anonymous carts are allowed; the owner is recorded when a session
		// is present and checked again at checkout.
		carts := apiGroup.Group("/carts")
		carts.Use(sessionMiddleware.OptionalSession())
		{
			addRoutes(carts, []route{
				{Method: http.MethodPost, Path: "/:cartId/items", Handler: cartHandler.Reserve},
				{Method: http.MethodPatch, Path: "/:cartId/items/:productId", Handler: cartHandler.ChangeQuantity},
				{Method: http.MethodPost, Path: "/:cartId/items/:productId/touch", Handler: cartHandler.Extend},
				{Method: http.MethodDelete, Path: "/:cartId/items/:productId", Handler: cartHandler.ReleaseLine},
				{Method: http.MethodDelete, Path: "/:cartId", Handler: cartHandler.ClearCart},
				{Method: http.MethodGet, Path: "/:cartId", Handler: cartHandler.GetCart},
				{Method: http.MethodPost, Path: "/:cartId/checkout", Handler: cartHandler.Checkout},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(sessionMiddleware.RequireSession())
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "/:id/confirm", Handler: orderHandler.Confirm},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: orderHandler.Cancel},
				{Method: http.MethodPost, Path: "/:id/fulfilled", Handler: orderHandler.Fulfilled},
				{Method: http.MethodGet, Path: "/:id", Handler: orderHandler.GetOrder},
				{Method: http.MethodGet, Path: "/:id/units", Handler: orderHandler.GetSoldUnits},
			})
		}

		products := apiGroup.Group("/products")
		{
			addRoutes(products, []route{
				{Method: http.MethodGet, Path: "/:id/available", Handler: catalogHandler.GetAvailable},
			})

			adminProducts := products.Group("")
			adminProducts.Use(sessionMiddleware.RequireSession())
			addRoutes(adminProducts, []route{
				{Method: http.MethodPost, Path: "/:id/units", Handler: catalogHandler.ImportUnits},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
