//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"testing"

	"storefront/internal/handler/middleware"
	"storefront/internal/pkg/cookie"
	"storefront/tests/common/httptest"
	usecasemock "storefront/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthMiddlewareTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockValidator *usecasemock.MockTokenValidator
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockValidator = usecasemock.NewMockTokenValidator(s.mockCtrl)
	mw := middleware.NewAuthMiddleware(s.mockValidator)

	echo := func(c *gin.Context) {
		resp := gin.H{}
		if id, ok := middleware.GetClientID(c); ok {
			resp["client_id"] = id.String()
		}
		c.JSON(http.StatusOK, resp)
	}
	s.router.GET("/required", mw.RequireAuth(), echo)
	s.router.GET("/optional", mw.OptionalAuth(), echo)
}

func (s *AuthMiddlewareTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) TestRequireAuth() {
	clientID := uuid.New()

	s.Run("success: bearer token identifies the client", func() {
		s.mockValidator.EXPECT().ValidateToken("good-token").Return(clientID, "buyer@example.com", nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/required", nil, "good-token")

		var res map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal(clientID.String(), res["client_id"])
	})

	s.Run("success: the access cookie wins over the header", func() {
		s.mockValidator.EXPECT().ValidateToken("cookie-token").Return(clientID, "buyer@example.com", nil).Times(1)

		cookies := []*http.Cookie{{Name: cookie.AccessTokenCookieName, Value: "cookie-token"}}
		rec := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodGet, "/required", nil, cookies, "header-token")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: missing token is 401", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/required", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})

	s.Run("error: rejected token is 401", func() {
		s.mockValidator.EXPECT().ValidateToken("expired").Return(uuid.Nil, "", errors.New("token expired")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/required", nil, "expired")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})
}

func (s *AuthMiddlewareTestSuite) TestOptionalAuth() {
	s.Run("success: guests pass through without a client", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/optional", nil, "")

		var res map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.NotContains(res, "client_id")
	})

	s.Run("success: invalid tokens are ignored", func() {
		s.mockValidator.EXPECT().ValidateToken("bad").Return(uuid.Nil, "", errors.New("signature invalid")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/optional", nil, "bad")

		var res map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.NotContains(res, "client_id")
	})

	s.Run("success: valid tokens identify the client", func() {
		clientID := uuid.New()
		s.mockValidator.EXPECT().ValidateToken("good").Return(clientID, "buyer@example.com", nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/optional", nil, "good")

		var res map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal(clientID.String(), res["client_id"])
	})
}
