package api

import (
	"net/http"

	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/cookie"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errInvalidIdempotencyKey = errs.New("invalid idempotency key format")

type CheckoutHandler struct {
	cmds      commands.CheckoutCommands
	cookieCfg config.CookieConfig
}

func NewCheckoutHandler(cmds commands.CheckoutCommands, cfg config.Config) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds, cookieCfg: cfg.Cookie}
}

// @Summary Create order
// @Description Turns the session cart into an order. Replaying the same Idempotency-Key returns the original order.
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Param form path string true "Order form label"
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Success 201 {object} resdto.CheckoutResponse
// @Success 200 {object} resdto.CheckoutResponse "Replayed"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /order/{form}/checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	clientID, ok := middleware.GetClientID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, commands.ErrClientNotFound, "Client not authenticated")
		return
	}
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	key, err := h.getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error())
		return
	}

	result, err := h.cmds.CreateOrder(c.Request.Context(), sid, commands.CheckoutInput{
		FormLabel:      c.Param("form"),
		ClientID:       clientID,
		IPAddress:      c.ClientIP(),
		AffiliateCode:  cookie.GetAffiliate(c, h.cookieCfg),
		IdempotencyKey: key,
	})
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.Header("Location", "/api/orders/"+result.OrderID.String())
	c.JSON(status, resdto.FromCheckoutResult(result))
}

func (h *CheckoutHandler) getIdempotencyKey(c *gin.Context) (uuid.UUID, error) {
	keyStr := c.GetHeader("Idempotency-Key")
	if keyStr == "" {
		return uuid.Nil, commands.ErrIdempotencyKeyRequired
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		return uuid.Nil, errInvalidIdempotencyKey
	}

	return key, nil
}
