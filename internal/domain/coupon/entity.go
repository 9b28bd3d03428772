package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponNotYetValid = errors.New("coupon is not yet valid")
	ErrCouponInactive    = errors.New("coupon is inactive")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
)

type Coupon struct {
	id        uuid.UUID
	code      Code
	discount  Discount
	maxQty    int
	usedQty   int
	active    bool
	validFrom *time.Time
	validTo   *time.Time
}

type Params struct {
	ID        uuid.UUID
	Code      string
	Type      DiscountType
	Value     decimal.Decimal
	Currency  string
	MaxQty    int
	UsedQty   int
	Active    bool
	ValidFrom *time.Time
	ValidTo   *time.Time
}

func NewCoupon(p Params) (*Coupon, error) {
	code, err := NewCouponCode(p.Code)
	if err != nil {
		return nil, err
	}
	discount, err := NewDiscount(p.Type, p.Value, p.Currency)
	if err != nil {
		return nil, err
	}

	return &Coupon{
		id:        p.ID,
		code:      code,
		discount:  discount,
		maxQty:    p.MaxQty,
		usedQty:   p.UsedQty,
		active:    p.Active,
		validFrom: p.ValidFrom,
		validTo:   p.ValidTo,
	}, nil
}

func (c *Coupon) IsValidAt(t time.Time) bool {
	if c.validFrom != nil && t.Before(*c.validFrom) {
		return false
	}
	if c.validTo != nil && t.After(*c.validTo) {
		return false
	}
	return true
}

// ValidateUsage checks that the coupon can be redeemed at t. MaxQty 0 means unlimited.
func (c *Coupon) ValidateUsage(t time.Time) error {
	if !c.active {
		return ErrCouponInactive
	}
	if !c.IsValidAt(t) {
		if c.validFrom != nil && t.Before(*c.validFrom) {
			return ErrCouponNotYetValid
		}
		return ErrCouponExpired
	}
	if c.maxQty > 0 && c.usedQty >= c.maxQty {
		return ErrCouponExhausted
	}
	return nil
}

// ApplyDiscount returns price after the discount, never below zero.
func (c *Coupon) ApplyDiscount(price, fixedInPriceCurrency decimal.Decimal) decimal.Decimal {
	return price.Sub(c.discount.AmountOff(price, fixedInPriceCurrency))
}

func (c *Coupon) ID() uuid.UUID         { return c.id }
func (c *Coupon) Code() Code            { return c.code }
func (c *Coupon) Discount() Discount    { return c.discount }
func (c *Coupon) MaxQty() int           { return c.maxQty }
func (c *Coupon) UsedQty() int          { return c.usedQty }
func (c *Coupon) Active() bool          { return c.active }
func (c *Coupon) ValidFrom() *time.Time { return c.validFrom }
func (c *Coupon) ValidTo() *time.Time   { return c.validTo }
