package coupon

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCouponCode      = errors.New("invalid coupon code format")
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

var hundred = decimal.NewFromInt(100)

type Code string

func NewCouponCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// Discount is either a percentage or a fixed amount in Currency.
type Discount struct {
	kind     DiscountType
	value    decimal.Decimal
	currency string
}

func NewFixedDiscount(amount decimal.Decimal, currency string) (Discount, error) {
	if amount.IsNegative() {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{kind: DiscountAmount, value: amount, currency: strings.ToUpper(currency)}, nil
}

func NewPercentageDiscount(percent decimal.Decimal) (Discount, error) {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return Discount{}, ErrInvalidDiscountPercent
	}
	return Discount{kind: DiscountPercent, value: percent}, nil
}

func NewDiscount(kind DiscountType, value decimal.Decimal, currency string) (Discount, error) {
	switch kind {
	case DiscountPercent:
		return NewPercentageDiscount(value)
	case DiscountAmount:
		return NewFixedDiscount(value, currency)
	default:
		return Discount{}, errors.New("discount must be either a fixed amount or a percentage")
	}
}

func (d Discount) Type() DiscountType     { return d.kind }
func (d Discount) Value() decimal.Decimal { return d.value }
func (d Discount) Currency() string       { return d.currency }
func (d Discount) IsPercentage() bool     { return d.kind == DiscountPercent }

// AmountOff is the discount on price. fixedInPriceCurrency is the fixed
// amount already converted to the price's currency; it is ignored for
// percentage discounts. The result never exceeds price.
func (d Discount) AmountOff(price, fixedInPriceCurrency decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	var off decimal.Decimal
	if d.IsPercentage() {
		off = price.Mul(d.value).Div(hundred).Round(2)
	} else {
		off = fixedInPriceCurrency
	}
	if off.GreaterThan(price) {
		return price
	}
	if off.IsNegative() {
		return decimal.Zero
	}
	return off
}
