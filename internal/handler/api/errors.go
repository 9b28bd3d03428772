package api

import (
	"net/http"

	reqdto "storefront/internal/handler/dto/request"
	"storefront/internal/handler/httperr"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"
	"storefront/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

var (
	errMissingSession = errs.New("cart session missing from context")
	errNegativeIndex  = errs.New("index must not be negative")
)

type errorMapping struct {
	target  error
	status  int
	message string
}

// Checked in order; the first match wins.
var useCaseErrors = []errorMapping{
	{shared.ErrOrderFormNotFound, http.StatusNotFound, "Order form not found"},
	{commands.ErrItemNotFound, http.StatusNotFound, "Cart item not found"},
	{queries.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
	{queries.ErrOrderAccess, http.StatusNotFound, "Order not found"},
	{queries.ErrInvalidCursor, http.StatusBadRequest, "Invalid cursor"},
	{reqdto.ErrAmbiguousConfigRequest, http.StatusBadRequest, "Invalid configuration request"},
	{shared.ErrCurrencyNotFound, http.StatusUnprocessableEntity, "Unknown currency"},

	{commands.ErrEmptyCart, http.StatusConflict, "Your cart is empty"},
	{commands.ErrPendingConfiguration, http.StatusConflict, "Some items still need to be configured"},
	{shared.ErrCartConflict, http.StatusConflict, "Your cart was changed by another request, please retry"},
	{commands.ErrIdempotencyKeyRequired, http.StatusBadRequest, "Idempotency-Key header is required"},
	{commands.ErrIdempotencyInProgress, http.StatusConflict, "Order request is currently being processed"},
	{commands.ErrDuplicateOrderRequest, http.StatusConflict, "Idempotency-Key was already used for a different cart"},
	{commands.ErrFraudRejected, http.StatusForbidden, "Order could not be accepted"},
	// Also matches queries.ErrClientNotFound and queries.ErrClientInactive,
	// which carry the same messages.
	{commands.ErrClientNotFound, http.StatusUnauthorized, "Client not found"},
	{commands.ErrClientInactive, http.StatusForbidden, "Account is inactive"},
	{commands.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},

	{shared.ErrSessionUnavailable, http.StatusServiceUnavailable, "Cart is temporarily unavailable"},
}

var couponErrors = []error{shared.ErrCouponNotFound, shared.ErrCouponRejected, shared.ErrCouponsDisabled}

// abortWithUseCaseError maps a use case error to a response. Field errors
// become 422 with the field map as detail; anything unknown is a 500.
func abortWithUseCaseError(c *gin.Context, err error) {
	if verr, ok := errs.AsValidation(err); ok {
		httperr.AbortWithFieldErrors(c, http.StatusUnprocessableEntity, err, "Validation failed", verr.Fields)
		return
	}
	for _, target := range couponErrors {
		if errs.Is(err, target) {
			httperr.AbortWithFieldErrors(c, http.StatusUnprocessableEntity, err, "Coupon cannot be applied",
				httperr.FieldErrors{"coupon": {target.Error()}})
			return
		}
	}
	if errs.Is(err, commands.ErrInvalidItem) {
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Item is not available")
		return
	}
	for _, m := range useCaseErrors {
		if errs.Is(err, m.target) {
			httperr.AbortWithError(c, m.status, err, m.message)
			return
		}
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
}

func abortBadRequest(c *gin.Context, err error) {
	httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request")
}
