//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"

	"storefront/internal/handler/dto/request"
	"storefront/internal/pkg/cookie"
	"storefront/tests/common/dbtest"
	"storefront/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func LoginClient(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	w := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login",
		request.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	accessCookie := httptest.ExtractCookie(w, cookie.AccessTokenCookieName)
	require.NotNil(t, accessCookie, "Access token not found in cookies")
	require.NotEmpty(t, accessCookie.Value, "Access token cookie is empty")

	return accessCookie.Value
}

// CreateAndLogin inserts a client and returns its id and access token.
func CreateAndLogin(t *testing.T, db dbtest.DBLike, router *gin.Engine, email string) (uuid.UUID, string) {
	t.Helper()
	id := dbtest.CreateTestClient(t, db, email)
	return id, LoginClient(t, router, email, dbtest.TestPassword)
}
