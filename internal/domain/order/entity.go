package order

import (
	"strconv"
	"strings"
	"time"

	"storefront/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	id          uuid.UUID
	clientID    uuid.UUID
	orderFormID uuid.UUID
	currency    string
	status      Status
	fraud       FraudResult
	couponID    *uuid.UUID
	couponCode  string
	ipAddress   string
	lines       []Line
	totals      Totals
	createdAt   time.Time
}

type NewParams struct {
	ClientID    uuid.UUID
	OrderFormID uuid.UUID
	Currency    string
	Lines       []Line
	Discount    decimal.Decimal
	CouponID    *uuid.UUID
	CouponCode  string
	IPAddress   string
	Status      Status
	Fraud       FraudResult
	Now         time.Time
}

// New validates the order and assigns ids. Field errors are keyed like
// "lines.0.qty" and returned as *errs.ValidationError.
func New(p NewParams) (*Order, error) {
	verr := errs.NewValidationError()
	if p.ClientID == uuid.Nil {
		verr.Add("client_id", "is required")
	}
	if len(strings.TrimSpace(p.Currency)) != 3 {
		verr.Add("currency", "must be a 3-letter code")
	}
	if len(p.Lines) == 0 {
		verr.Add("lines", "must contain at least one item")
	}
	if p.Status != StatusPending && p.Status != StatusAccepted {
		verr.Add("status", "is invalid")
	}

	lines := make([]Line, len(p.Lines))
	for i, l := range p.Lines {
		key := "lines." + strconv.Itoa(i)
		if l.PricingID == uuid.Nil {
			verr.Add(key+".pricing_id", "is required")
		}
		if l.Qty < 1 {
			verr.Add(key+".qty", "must be at least 1")
		}
		if l.UnitPrice.IsNegative() || l.SetupFee.IsNegative() {
			verr.Add(key+".price", "cannot be negative")
		}
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		if l.ServiceID == uuid.Nil {
			l.ServiceID = uuid.New()
		}
		lines[i] = l
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &Order{
		id:          uuid.New(),
		clientID:    p.ClientID,
		orderFormID: p.OrderFormID,
		currency:    strings.ToUpper(p.Currency),
		status:      p.Status,
		fraud:       p.Fraud,
		couponID:    p.CouponID,
		couponCode:  p.CouponCode,
		ipAddress:   p.IPAddress,
		lines:       lines,
		totals:      ComputeTotals(lines, p.Discount),
		createdAt:   p.Now,
	}, nil
}

func (o *Order) IsZeroTotal() bool {
	return !o.totals.Total.IsPositive()
}

// MarkPaid completes an accepted order once its invoice is settled.
// Held orders stay pending for review.
func (o *Order) MarkPaid() {
	if o.status == StatusAccepted {
		o.status = StatusComplete
	}
}

// ServiceIDOf returns the service created for the cart item with itemUUID.
func (o *Order) ServiceIDOf(itemUUID uuid.UUID) (uuid.UUID, bool) {
	for _, l := range o.lines {
		if l.ItemUUID == itemUUID {
			return l.ServiceID, true
		}
	}
	return uuid.Nil, false
}

// CommissionableTotal is the order total minus lines excluded from affiliate
// commission. It may be zero or negative when discounts cover everything else.
func (o *Order) CommissionableTotal() decimal.Decimal {
	amount := o.totals.Total
	for _, l := range o.lines {
		if l.AffiliateExcluded {
			amount = amount.Sub(l.Subtotal())
		}
	}
	return amount
}

func (o *Order) ID() uuid.UUID          { return o.id }
func (o *Order) ClientID() uuid.UUID    { return o.clientID }
func (o *Order) OrderFormID() uuid.UUID { return o.orderFormID }
func (o *Order) Currency() string       { return o.currency }
func (o *Order) Status() Status         { return o.status }
func (o *Order) Fraud() FraudResult     { return o.fraud }
func (o *Order) CouponID() *uuid.UUID   { return o.couponID }
func (o *Order) CouponCode() string     { return o.couponCode }
func (o *Order) IPAddress() string      { return o.ipAddress }
func (o *Order) Lines() []Line          { return o.lines }
func (o *Order) Totals() Totals         { return o.totals }
func (o *Order) CreatedAt() time.Time   { return o.createdAt }
