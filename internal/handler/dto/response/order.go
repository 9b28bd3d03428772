package response

import (
	"time"

	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type PaymentDueResponse struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
}

type CheckoutResponse struct {
	OrderID   uuid.UUID           `json:"order_id"`
	Status    string              `json:"status"`
	InvoiceID *uuid.UUID          `json:"invoice_id,omitempty"`
	Currency  string              `json:"currency"`
	Total     string              `json:"total"`
	Complete  bool                `json:"complete"`
	Payment   *PaymentDueResponse `json:"payment,omitempty"`
	Replayed  bool                `json:"replayed"`
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	res := &CheckoutResponse{
		OrderID:   r.OrderID,
		Status:    r.Status,
		InvoiceID: r.InvoiceID,
		Currency:  r.Currency,
		Total:     Money(r.Total),
		Complete:  r.Complete,
		Replayed:  r.IsReplayed,
	}
	if r.Payment != nil {
		res.Payment = &PaymentDueResponse{
			InvoiceID: r.Payment.InvoiceID,
			Amount:    Money(r.Payment.Amount),
			Currency:  r.Payment.Currency,
		}
	}
	return res
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	Status        string              `json:"status"`
	FraudStatus   string              `json:"fraud_status"`
	Currency      string              `json:"currency"`
	Subtotal      string              `json:"subtotal"`
	Discount      string              `json:"discount"`
	Total         string              `json:"total"`
	CouponCode    *string             `json:"coupon_code,omitempty"`
	InvoiceID     *uuid.UUID          `json:"invoice_id,omitempty"`
	InvoiceStatus *string             `json:"invoice_status,omitempty"`
	Lines         []OrderLineResponse `json:"lines"`
	CreatedAt     time.Time           `json:"created_at"`
}

type OrderLineResponse struct {
	ServiceID       uuid.UUID  `json:"service_id"`
	ParentServiceID *uuid.UUID `json:"parent_service_id,omitempty"`
	PackageID       uuid.UUID  `json:"package_id"`
	PricingID       uuid.UUID  `json:"pricing_id"`
	Name            string     `json:"name"`
	Domain          *string    `json:"domain,omitempty"`
	Qty             int        `json:"qty"`
	UnitPrice       string     `json:"unit_price"`
	SetupFee        string     `json:"setup_fee"`
}

func FromOrderView(v *queries.OrderView) (*OrderResponse, error) {
	var res OrderResponse
	if err := copyInto(&res, v); err != nil {
		return nil, err
	}
	if res.Lines == nil {
		res.Lines = []OrderLineResponse{}
	}
	return &res, nil
}

type OrderListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	Currency      string    `json:"currency"`
	Total         string    `json:"total"`
	InvoiceStatus *string   `json:"invoice_status,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func FromOrderList(items []*queries.OrderListItem) ([]*OrderListItemResponse, error) {
	res := make([]*OrderListItemResponse, len(items))
	for i, it := range items {
		res[i] = &OrderListItemResponse{}
		if err := copyInto(res[i], it); err != nil {
			return nil, err
		}
	}
	return res, nil
}
