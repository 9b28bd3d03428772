package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventOrderCreated = "order.created"

// CreatedEvent is published once the order and its invoice are stored.
type CreatedEvent struct {
	EventType     string          `json:"event_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Status        Status          `json:"status"`
	InvoiceStatus InvoiceStatus   `json:"invoice_status"`
	FraudStatus   FraudStatus     `json:"fraud_status"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	ServiceIDs    []uuid.UUID     `json:"service_ids"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func NewCreatedEvent(o *Order, inv *Invoice, now time.Time) CreatedEvent {
	ids := make([]uuid.UUID, 0, len(o.lines))
	for _, l := range o.lines {
		ids = append(ids, l.ServiceID)
	}
	return CreatedEvent{
		EventType:     EventOrderCreated,
		AggregateID:   o.id,
		ClientID:      o.clientID,
		InvoiceID:     inv.ID,
		Status:        o.status,
		InvoiceStatus: inv.Status,
		FraudStatus:   o.fraud.Status,
		Currency:      o.currency,
		Total:         o.totals.Total,
		ServiceIDs:    ids,
		OccurredAt:    now,
	}
}
