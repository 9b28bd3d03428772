package cookie

import (
	"net/http"
	"time"

	"storefront/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

const AccessTokenCookieName = "access_token"

func SetAccessToken(c *gin.Context, cfg config.CookieConfig, accessToken string, expiry time.Duration) {
	set(c, cfg, AccessTokenCookieName, accessToken, expiry, true)
}

func ClearAccessToken(c *gin.Context, cfg config.CookieConfig) {
	set(c, cfg, AccessTokenCookieName, "", -1, true)
}

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}

// SetSession refreshes the cart session cookie on every request so the
// cookie and the Redis TTL expire together.
func SetSession(c *gin.Context, cfg config.CookieConfig, name, sessionID string, ttl time.Duration) {
	set(c, cfg, name, sessionID, ttl, true)
}

func GetSession(c *gin.Context, name string) string {
	id, _ := c.Cookie(name)
	return id
}

// Affiliate cookies are readable by the storefront frontend.
func SetAffiliate(c *gin.Context, cfg config.CookieConfig, code string) {
	set(c, cfg, cfg.AffiliateCookieName, code, cfg.AffiliateCookieTTL, false)
}

func GetAffiliate(c *gin.Context, cfg config.CookieConfig) string {
	code, _ := c.Cookie(cfg.AffiliateCookieName)
	return code
}

func set(c *gin.Context, cfg config.CookieConfig, name, value string, maxAge time.Duration, httpOnly bool) {
	c.SetSameSite(getSameSite(cfg.SameSite))
	age := int(maxAge.Seconds())
	if maxAge < 0 {
		age = -1
	}
	c.SetCookie(name, value, age, "/", cfg.Domain, cfg.Secure, httpOnly)
}

func getSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "Lax":
		return http.SameSiteLaxMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
