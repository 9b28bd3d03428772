package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/handler/httperr"
	"storefront/internal/pkg/cookie"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

var errMissingToken = errs.New("missing access token")

const (
	ctxClientIDKey    = "client_id"
	ctxClientEmailKey = "client_email"
)

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, errMissingToken, "Access token required")
			return
		}

		clientID, email, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token")
			return
		}

		setClient(c, clientID, email)
		c.Next()
	}
}

// OptionalAuth identifies the client when a valid token is present. Cart
// and configuration routes work for guests too.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		clientID, email, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}

		setClient(c, clientID, email)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if token := cookie.GetAccessToken(c); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func setClient(c *gin.Context, clientID uuid.UUID, email string) {
	c.Set(ctxClientIDKey, clientID)
	c.Set(ctxClientEmailKey, email)
}

func GetClientID(c *gin.Context) (uuid.UUID, bool) {
	clientID, exists := c.Get(ctxClientIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := clientID.(uuid.UUID)
	return id, ok
}

// OptionalClientID is GetClientID for routes that also serve guests.
func OptionalClientID(c *gin.Context) *uuid.UUID {
	if id, ok := GetClientID(c); ok {
		return &id
	}
	return nil
}
