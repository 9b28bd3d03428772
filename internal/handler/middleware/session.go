package middleware

import (
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/cookie"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxSessionIDKey = "cart_session_id"

	// AffiliateQueryParam on any order route records the referring affiliate.
	AffiliateQueryParam = "aff"
)

type SessionMiddleware struct {
	sessionCfg config.SessionConfig
	cookieCfg  config.CookieConfig
}

func NewSessionMiddleware(cfg config.Config) *SessionMiddleware {
	return &SessionMiddleware{
		sessionCfg: cfg.Session,
		cookieCfg:  cfg.Cookie,
	}
}

// CartSession makes sure the request carries a cart session id. Unknown or
// malformed ids are replaced, and the cookie is refreshed so it expires
// together with the stored cart.
func (m *SessionMiddleware) CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := cookie.GetSession(c, m.sessionCfg.CookieName)
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.NewString()
		}
		cookie.SetSession(c, m.cookieCfg, m.sessionCfg.CookieName, sessionID, m.sessionCfg.TTL)
		c.Set(ctxSessionIDKey, sessionID)

		if code := c.Query(AffiliateQueryParam); code != "" && len(code) <= 64 {
			cookie.SetAffiliate(c, m.cookieCfg, code)
		}
		c.Next()
	}
}

func GetSessionID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxSessionIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
