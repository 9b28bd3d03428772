//go:build unit

package api_test

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const testSessionID = "6f1d4c1e-5b9b-4f0e-9d53-1f2a0c7e8b11"

// withSession stands in for middleware.CartSession.
func withSession(sid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("cart_session_id", sid)
		c.Next()
	}
}

// withClient stands in for the auth middleware after a valid token.
func withClient(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("client_id", id)
		c.Next()
	}
}
