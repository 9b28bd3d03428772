package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderView represents read-optimized order data with its invoice
type OrderView struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	OrderFormID   uuid.UUID       `json:"order_form_id"`
	Status        string          `json:"status"`
	FraudStatus   string          `json:"fraud_status"`
	Currency      string          `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	CouponCode    *string         `json:"coupon_code,omitempty"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	InvoiceStatus *string         `json:"invoice_status,omitempty"`
	Lines         []OrderLineView `json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InvoicePaid reports whether the order's invoice is settled.
func (v *OrderView) InvoicePaid() bool {
	return v.InvoiceStatus != nil && *v.InvoiceStatus == "paid"
}

type OrderLineView struct {
	ID              uuid.UUID       `json:"id"`
	ServiceID       uuid.UUID       `json:"service_id"`
	ParentServiceID *uuid.UUID      `json:"parent_service_id,omitempty"`
	PackageID       uuid.UUID       `json:"package_id"`
	PricingID       uuid.UUID       `json:"pricing_id"`
	Name            string          `json:"name"`
	Domain          *string         `json:"domain,omitempty"`
	Qty             int             `json:"qty"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	SetupFee        decimal.Decimal `json:"setup_fee"`
}

type OrderListItem struct {
	ID            uuid.UUID       `json:"id"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	InvoiceStatus *string         `json:"invoice_status,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ClientView represents read-optimized client data
type ClientView struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
}

// CartSummary is the priced cart as shown on the cart page
type CartSummary struct {
	Currency     string           `json:"currency"`
	Items        []CartLineView   `json:"items"`
	Queue        []QueueEntryView `json:"queue"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Discount     decimal.Decimal  `json:"discount"`
	Total        decimal.Decimal  `json:"total"`
	Coupon       string           `json:"coupon,omitempty"`
	CouponError  string           `json:"coupon_error,omitempty"`
	TempCoupon   string           `json:"temp_coupon,omitempty"`
	SkipCheckout bool             `json:"skip_checkout"`
	// CanCheckout is false while the cart is empty, entries await
	// configuration or an item can no longer be priced.
	CanCheckout bool `json:"can_checkout"`
}

type CartLineView struct {
	Index      int               `json:"index"`
	UUID       uuid.UUID         `json:"uuid"`
	ParentUUID *uuid.UUID        `json:"parent_uuid,omitempty"`
	PackageID  *uuid.UUID        `json:"package_id,omitempty"`
	PricingID  uuid.UUID         `json:"pricing_id"`
	Name       string            `json:"name"`
	Domain     string            `json:"domain,omitempty"`
	Term       int               `json:"term"`
	Period     string            `json:"period"`
	Qty        int               `json:"qty"`
	Options    map[string]string `json:"options,omitempty"`
	UnitPrice  decimal.Decimal   `json:"unit_price"`
	SetupFee   decimal.Decimal   `json:"setup_fee"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Error      string            `json:"error,omitempty"`
}

type QueueEntryView struct {
	Index     int       `json:"index"`
	UUID      uuid.UUID `json:"uuid"`
	PricingID uuid.UUID `json:"pricing_id"`
	GroupID   uuid.UUID `json:"group_id"`
	Domain    string    `json:"domain,omitempty"`
}
