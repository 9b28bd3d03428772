package commands

import (
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"
)

var (
	ErrOrderFormNotFound = shared.ErrOrderFormNotFound

	// Item validity. Every item error is also marked ErrInvalidItem.
	ErrInvalidItem        = errs.New("invalid item")
	ErrInvalidPricing     = errs.New("invalid pricing")
	ErrGroupNotOffered    = errs.New("package group is not offered on this order form")
	ErrPackageUnavailable = errs.New("package is not available")
	ErrSoldOut            = errs.New("package is sold out")
	ErrClientLimitReached = errs.New("client limit reached for package")
	ErrDuplicateDomain    = errs.New("domain is already in the cart")

	ErrItemNotFound         = errs.New("cart item not found")
	ErrEmptyCart            = errs.New("cart is empty")
	ErrPendingConfiguration = errs.New("cart has items awaiting configuration")
	ErrSessionUnavailable   = shared.ErrSessionUnavailable

	ErrIdempotencyKeyRequired = errs.New("idempotency key required")
	ErrIdempotencyInProgress  = errs.New("idempotency in progress")
	ErrDuplicateOrderRequest  = errs.New("idempotency key reused with a different cart")
	ErrIdempotencyCheckFailed = errs.New("idempotency check failed")

	ErrClientNotFound          = errs.New("client not found")
	ErrFraudRejected           = errs.New("order rejected by fraud screening")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// itemErrorField is the form field an item error is reported against.
func itemErrorField(err error) string {
	switch {
	case errs.Is(err, ErrDuplicateDomain):
		return "domain"
	case errs.Is(err, ErrClientLimitReached):
		return "qty"
	case errs.Is(err, ErrGroupNotOffered):
		return "group_id"
	default:
		return "pricing_id"
	}
}

// isGoneItem reports errors that mean the item can no longer be bought at
// all, as opposed to errors the client can fix in the form.
func isGoneItem(err error) bool {
	return errs.Is(err, ErrSoldOut) || errs.Is(err, ErrPackageUnavailable) || errs.Is(err, ErrInvalidPricing)
}

func itemValidationError(prefix string, err error) *errs.ValidationError {
	verr := errs.NewValidationError()
	field := itemErrorField(err)
	if prefix != "" {
		field = prefix + "." + field
	}
	verr.Add(field, itemErrorMessage(err))
	return verr
}

func itemErrorMessage(err error) string {
	for _, sentinel := range []error{
		ErrDuplicateDomain, ErrClientLimitReached, ErrGroupNotOffered,
		ErrSoldOut, ErrPackageUnavailable, ErrInvalidPricing,
	} {
		if errs.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "is invalid"
}
