package api

import (
	"net/http"

	reqdto "storefront/internal/handler/dto/request"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cmds commands.CartCommands
	q    queries.CartQueries
}

func NewCartHandler(cmds commands.CartCommands, q queries.CartQueries) *CartHandler {
	return &CartHandler{cmds: cmds, q: q}
}

// @Summary Get cart
// @Description Priced cart and queue for the current session
// @Tags cart
// @Produce json
// @Param form path string true "Order form label"
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} httperr.Response
// @Router /order/{form}/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	summary := h.renderCart(c, sid)
	if summary == nil || summary.TempCoupon == "" {
		return
	}
	// A rejected coupon is reported on one page load only.
	if err := h.cmds.ClearTempCoupon(c.Request.Context(), sid); err != nil {
		_ = c.Error(err)
	}
}

// @Summary Add to cart
// @Description Queue one or more package selections for configuration. Either all selections are queued or none.
// @Tags cart
// @Accept json
// @Produce json
// @Param form path string true "Order form label"
// @Param request body reqdto.AddToCartRequest true "Selections"
// @Success 200 {object} resdto.StepResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /order/{form}/cart [post]
func (h *CartHandler) Add(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req reqdto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	step, err := h.cmds.AddToCart(c.Request.Context(), sid, req.ToInput(c.Param("form"), middleware.OptionalClientID(c)))
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromStep(*step))
}

// @Summary Empty cart
// @Description Removes every cart item and queued entry
// @Tags cart
// @Param form path string true "Order form label"
// @Success 204 "No Content"
// @Router /order/{form}/cart [delete]
func (h *CartHandler) Empty(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.cmds.EmptyCart(c.Request.Context(), sid); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Remove cart item
// @Description Removes the item and, recursively, its addons
// @Tags cart
// @Param form path string true "Order form label"
// @Param index path int true "Cart item index"
// @Success 204 "No Content"
// @Failure 404 {object} httperr.Response
// @Router /order/{form}/cart/items/{index} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c, "index")
	if !ok {
		return
	}
	if err := h.cmds.RemoveItem(c.Request.Context(), sid, idx); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Queue a package
// @Description Adds a single selection to the configuration queue
// @Tags cart
// @Accept json
// @Produce json
// @Param form path string true "Order form label"
// @Param request body reqdto.SelectionRequest true "Selection"
// @Success 200 {object} resdto.StepResponse
// @Failure 422 {object} httperr.Response
// @Router /order/{form}/queue [post]
func (h *CartHandler) Enqueue(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var sel reqdto.SelectionRequest
	if err := c.ShouldBindJSON(&sel); err != nil {
		abortBadRequest(c, err)
		return
	}
	req := reqdto.AddToCartRequest{Selections: []reqdto.SelectionRequest{sel}}

	step, err := h.cmds.AddToCart(c.Request.Context(), sid, req.ToInput(c.Param("form"), middleware.OptionalClientID(c)))
	if err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromStep(*step))
}

// @Summary Remove queued entry
// @Tags cart
// @Param form path string true "Order form label"
// @Param index path int true "Queue index"
// @Success 204 "No Content"
// @Failure 404 {object} httperr.Response
// @Router /order/{form}/queue/{index} [delete]
func (h *CartHandler) Dequeue(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c, "index")
	if !ok {
		return
	}
	if err := h.cmds.RemoveQueued(c.Request.Context(), sid, idx); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Apply coupon
// @Description Validates the code and applies it to the session; an invalid code is kept as temp_coupon
// @Tags cart
// @Accept json
// @Produce json
// @Param form path string true "Order form label"
// @Param request body reqdto.CouponRequest true "Coupon"
// @Success 200 {object} resdto.CartResponse
// @Failure 422 {object} httperr.Response
// @Router /order/{form}/cart/coupon [post]
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req reqdto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := h.cmds.ApplyCoupon(c.Request.Context(), sid, c.Param("form"), req.Code); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	h.renderCart(c, sid)
}

// @Summary Remove coupon
// @Tags cart
// @Produce json
// @Param form path string true "Order form label"
// @Success 200 {object} resdto.CartResponse
// @Router /order/{form}/cart/coupon [delete]
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.cmds.RemoveCoupon(c.Request.Context(), sid); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	h.renderCart(c, sid)
}

// @Summary Set session currency
// @Tags cart
// @Accept json
// @Produce json
// @Param form path string true "Order form label"
// @Param request body reqdto.CurrencyRequest true "Currency"
// @Success 200 {object} resdto.CartResponse
// @Failure 422 {object} httperr.Response
// @Router /order/{form}/cart/currency [put]
func (h *CartHandler) SetCurrency(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req reqdto.CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := h.cmds.SetCurrency(c.Request.Context(), sid, req.Code); err != nil {
		abortWithUseCaseError(c, err)
		return
	}
	h.renderCart(c, sid)
}

func (h *CartHandler) renderCart(c *gin.Context, sid string) *queries.CartSummary {
	summary, err := h.q.Summary(c.Request.Context(), sid, c.Param("form"))
	if err != nil {
		abortWithUseCaseError(c, err)
		return nil
	}
	res, err := resdto.FromCartSummary(summary)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
		return nil
	}
	c.JSON(http.StatusOK, res)
	return summary
}
