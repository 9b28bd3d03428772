package components

import (
	"storefront/internal/handler"
	"storefront/internal/handler/api"
	"storefront/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewCartHandler,
		api.NewConfigHandler,
		api.NewCheckoutHandler,
		api.NewOrderHandler,
		handler.NewHandlers,
		middleware.NewAuthMiddleware,
		middleware.NewSessionMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
