package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ClientID  uuid.UUID
	Currency  string
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Status    InvoiceStatus
	DatePaid  *time.Time
	CreatedAt time.Time
}

// NewInvoice bills the order. A zero-total invoice is settled on creation
// and the order is marked paid with it.
func NewInvoice(o *Order, now time.Time) *Invoice {
	t := o.Totals()
	inv := &Invoice{
		ID:        uuid.New(),
		OrderID:   o.ID(),
		ClientID:  o.ClientID(),
		Currency:  o.Currency(),
		Subtotal:  t.Subtotal,
		Discount:  t.Discount,
		Total:     t.Total,
		Status:    InvoiceUnpaid,
		CreatedAt: now,
	}
	if o.IsZeroTotal() {
		paid := now
		inv.Status = InvoicePaid
		inv.DatePaid = &paid
		o.MarkPaid()
	}
	return inv
}

func (i *Invoice) IsPaid() bool { return i.Status == InvoicePaid }
