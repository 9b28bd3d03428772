package shared

import (
	"context"
	"slices"
	"time"

	"storefront/internal/domain/coupon"
	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)

type OrderFormSnapshot struct {
	ID              uuid.UUID
	Label           string
	Name            string
	Active          bool
	ManualReview    bool
	AllowCoupons    bool
	RedirectURL     string
	DefaultCurrency string
	GroupIDs        []uuid.UUID
}

var ErrOrderFormNotFound = errs.New("order form not found")

// LoadOrderForm resolves an active order form by its label.
func LoadOrderForm(ctx context.Context, reads CommandReads, label string) (*OrderFormSnapshot, error) {
	form, err := reads.OrderFormByLabel(ctx, label)
	if err != nil {
		return nil, MarkNotFound(err, ErrOrderFormNotFound)
	}
	if !form.Active {
		return nil, ErrOrderFormNotFound
	}
	return form, nil
}

func (f *OrderFormSnapshot) HasGroup(id uuid.UUID) bool {
	return slices.Contains(f.GroupIDs, id)
}

type CouponSnapshot struct {
	ID        uuid.UUID
	Code      string
	Type      string
	Value     decimal.Decimal
	Currency  string
	MaxQty    int
	UsedQty   int
	Active    bool
	ValidFrom *time.Time
	ValidTo   *time.Time
}

func (s *CouponSnapshot) ToDomain() (*coupon.Coupon, error) {
	return coupon.NewCoupon(coupon.Params{
		ID:        s.ID,
		Code:      s.Code,
		Type:      coupon.DiscountType(s.Type),
		Value:     s.Value,
		Currency:  s.Currency,
		MaxQty:    s.MaxQty,
		UsedQty:   s.UsedQty,
		Active:    s.Active,
		ValidFrom: s.ValidFrom,
		ValidTo:   s.ValidTo,
	})
}

type ClientSnapshot struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	EmailVerified bool
	IsActive      bool
}

type IdempotencyRecord struct {
	Key           uuid.UUID
	ClientID      uuid.UUID
	Status        string
	RequestHash   string
	ResultOrderID *uuid.UUID
	ExpiresAt     time.Time
}
