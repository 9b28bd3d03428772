package middleware

import (
	"log/slog"
	"slices"

	"storefront/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware always allows the Idempotency-Key request header and
// exposes Location, since checkout clients depend on both.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowHeaders := cfg.AllowHeaders
	if !slices.Contains(allowHeaders, "Idempotency-Key") {
		allowHeaders = append(slices.Clone(allowHeaders), "Idempotency-Key")
	}
	exposeHeaders := cfg.ExposeHeaders
	if !slices.Contains(exposeHeaders, "Location") {
		exposeHeaders = append(slices.Clone(exposeHeaders), "Location")
	}

	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized", "AllowOrigins", cfg.AllowOrigins)
	return cors.New(corsCfg)
}
