package api

import (
	"net/http"
	"strconv"

	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"

	"github.com/gin-gonic/gin"
)

// sessionID returns the cart session set by middleware.CartSession.
func sessionID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingSession, "Internal server error")
		return "", false
	}
	return id, true
}

func indexParam(c *gin.Context, name string) (int, bool) {
	idx, err := strconv.Atoi(c.Param(name))
	if err != nil || idx < 0 {
		if err == nil {
			err = errNegativeIndex
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid "+name)
		return 0, false
	}
	return idx, true
}
