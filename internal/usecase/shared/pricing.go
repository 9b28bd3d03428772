package shared

import (
	"context"
	"strings"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/coupon"
	"storefront/internal/domain/currency"
	"storefront/internal/infra"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrCurrencyNotFound = errs.New("currency not found")
	ErrPricingNotFound  = errs.New("pricing not found")
	ErrCouponNotFound   = errs.New("coupon not found")
	ErrCouponRejected   = errs.New("coupon cannot be applied")
	ErrCouponsDisabled  = errs.New("coupons are not accepted on this order form")
)

type QuoteLine struct {
	Index     int
	Item      cart.Item
	Package   *catalog.Package
	Pricing   catalog.Pricing
	UnitPrice decimal.Decimal
	SetupFee  decimal.Decimal
	Subtotal  decimal.Decimal
	// Err is set when the item could not be priced; such lines are left out of totals.
	Err error
}

type Quote struct {
	Currency  string
	Lines     []QuoteLine
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Coupon    *coupon.Coupon
	CouponErr error
}

// Valid reports whether every line could be priced.
func (q *Quote) Valid() bool {
	for _, l := range q.Lines {
		if l.Err != nil {
			return false
		}
	}
	return true
}

// Pricer prices cart items in the session currency and applies the session coupon.
type Pricer struct {
	reads CommandReads
}

func NewPricer(reads CommandReads) *Pricer {
	return &Pricer{reads: reads}
}

func (p *Pricer) Quote(ctx context.Context, st *cart.State, currencyCode string, allowCoupons bool, now time.Time) (*Quote, error) {
	target, err := p.currency(ctx, currencyCode)
	if err != nil {
		return nil, err
	}
	rates := map[string]currency.Currency{target.Code: target}

	q := &Quote{Currency: target.Code, Subtotal: decimal.Zero, Discount: decimal.Zero}
	for i, item := range st.Items {
		line := QuoteLine{Index: i, Item: item.Clone()}

		pkg, err := p.reads.PackageByPricingID(ctx, item.PricingID)
		if err != nil {
			if !infra.IsKind(err, infra.KindNotFound) {
				return nil, err
			}
			line.Err = errs.Mark(err, ErrPricingNotFound)
			q.Lines = append(q.Lines, line)
			continue
		}
		pricing, err := pkg.PricingByID(item.PricingID)
		if err != nil {
			line.Err = errs.Mark(err, ErrPricingNotFound)
			q.Lines = append(q.Lines, line)
			continue
		}

		from, ok := rates[strings.ToUpper(pricing.Currency)]
		if !ok {
			c, err := p.currency(ctx, pricing.Currency)
			if err != nil {
				return nil, err
			}
			from = c
			rates[from.Code] = from
		}

		qty := decimal.NewFromInt(int64(item.Quantity()))
		unit := pricing.Price.Add(catalog.OptionsPrice(pkg.Options(), item.Options))
		line.Package = pkg
		line.Pricing = pricing
		line.UnitPrice = currency.Convert(unit, from, target)
		line.SetupFee = currency.Convert(pricing.SetupFee, from, target)
		line.Subtotal = line.UnitPrice.Add(line.SetupFee).Mul(qty)
		q.Subtotal = q.Subtotal.Add(line.Subtotal)
		q.Lines = append(q.Lines, line)
	}

	if st.Coupon != "" {
		q.Coupon, q.Discount, q.CouponErr = p.discount(ctx, st.Coupon, q.Subtotal, target, allowCoupons, now)
		if q.CouponErr != nil && !errs.Is(q.CouponErr, ErrCouponNotFound) &&
			!errs.Is(q.CouponErr, ErrCouponRejected) && !errs.Is(q.CouponErr, ErrCouponsDisabled) {
			return nil, q.CouponErr
		}
	}
	q.Total = q.Subtotal.Sub(q.Discount)
	return q, nil
}

// CheckCoupon validates a code for use now without pricing anything.
func (p *Pricer) CheckCoupon(ctx context.Context, code string, allowCoupons bool, now time.Time) (*coupon.Coupon, error) {
	if !allowCoupons {
		return nil, ErrCouponsDisabled
	}
	snap, err := p.reads.CouponByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, MarkNotFound(err, ErrCouponNotFound)
	}
	c, err := snap.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrCouponRejected)
	}
	if err := c.ValidateUsage(now); err != nil {
		return nil, errs.Mark(err, ErrCouponRejected)
	}
	return c, nil
}

func (p *Pricer) discount(ctx context.Context, code string, subtotal decimal.Decimal, target currency.Currency, allowCoupons bool, now time.Time) (*coupon.Coupon, decimal.Decimal, error) {
	c, err := p.CheckCoupon(ctx, code, allowCoupons, now)
	if err != nil {
		return nil, decimal.Zero, err
	}

	fixed := decimal.Zero
	if !c.Discount().IsPercentage() {
		from := target
		if cc := c.Discount().Currency(); cc != "" && cc != target.Code {
			from, err = p.currency(ctx, cc)
			if err != nil {
				return nil, decimal.Zero, err
			}
		}
		fixed = currency.Convert(c.Discount().Value(), from, target)
	}
	return c, c.Discount().AmountOff(subtotal, fixed), nil
}

func (p *Pricer) currency(ctx context.Context, code string) (currency.Currency, error) {
	c, err := p.reads.CurrencyByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return currency.Currency{}, MarkNotFound(err, ErrCurrencyNotFound)
	}
	return *c, nil
}

// MarkNotFound tags repository not-found errors with sentinel and passes
// other failures through unchanged.
func MarkNotFound(err, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, sentinel)
	}
	return err
}
