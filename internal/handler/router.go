package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/handler/api"
	"storefront/internal/handler/middleware"
	"storefront/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth     *api.AuthHandler
	Cart     *api.CartHandler
	Config   *api.ConfigHandler
	Checkout *api.CheckoutHandler
	Order    *api.OrderHandler
}

func NewHandlers(auth *api.AuthHandler, cart *api.CartHandler, cfg *api.ConfigHandler, checkout *api.CheckoutHandler, order *api.OrderHandler) Handlers {
	return Handlers{Auth: auth, Cart: cart, Config: cfg, Checkout: checkout, Order: order}
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware, sessionMiddleware *middleware.SessionMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware, sessionMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger, cfg.Log))
	engine.Use(middleware.ErrorHandler(logger))
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, sessionMiddleware *middleware.SessionMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		// Guests can build a cart; only checkout needs a logged-in client.
		orderForm := apiGroup.Group("/order/:form")
		orderForm.Use(sessionMiddleware.CartSession(), authMiddleware.OptionalAuth())
		{
			addRoutes(orderForm, []route{
				{Method: http.MethodGet, Path: "/cart", Handler: h.Cart.Get},
				{Method: http.MethodPost, Path: "/cart", Handler: h.Cart.Add},
				{Method: http.MethodDelete, Path: "/cart", Handler: h.Cart.Empty},
				{Method: http.MethodDelete, Path: "/cart/items/:index", Handler: h.Cart.RemoveItem},
				{Method: http.MethodPost, Path: "/cart/coupon", Handler: h.Cart.ApplyCoupon},
				{Method: http.MethodDelete, Path: "/cart/coupon", Handler: h.Cart.RemoveCoupon},
				{Method: http.MethodPut, Path: "/cart/currency", Handler: h.Cart.SetCurrency},
				{Method: http.MethodPost, Path: "/queue", Handler: h.Cart.Enqueue},
				{Method: http.MethodDelete, Path: "/queue/:index", Handler: h.Cart.Dequeue},
				{Method: http.MethodGet, Path: "/config", Handler: h.Config.Prepare},
				{Method: http.MethodPost, Path: "/config", Handler: h.Config.Submit},
				{Method: http.MethodPost, Path: "/config/package-options", Handler: h.Config.PackageOptions},
			})

			checkout := orderForm.Group("")
			checkout.Use(authMiddleware.RequireAuth())
			addRoutes(checkout, []route{
				{Method: http.MethodPost, Path: "/checkout", Handler: h.Checkout.Checkout},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Order.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Order.Get},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
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
