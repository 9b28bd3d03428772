//go:build unit || e2e

package fake

import (
	"context"

	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

// OrderQueries serves order views from the orders committed to a UoW.
type OrderQueries struct {
	UoW *UoW
}

func (q OrderQueries) GetByID(ctx context.Context, actor, id uuid.UUID) (*queries.OrderView, error) {
	v, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.ClientID != actor {
		return nil, queries.ErrOrderNotFound
	}
	return v, nil
}

func (q OrderQueries) GetByIDSystem(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
	o := q.UoW.OrderByID(id)
	if o == nil {
		return nil, queries.ErrOrderNotFound
	}
	t := o.Totals()
	v := &queries.OrderView{
		ID:          o.ID(),
		ClientID:    o.ClientID(),
		OrderFormID: o.OrderFormID(),
		Status:      o.Status().String(),
		FraudStatus: string(o.Fraud().Status),
		Currency:    o.Currency(),
		Subtotal:    t.Subtotal,
		Discount:    t.Discount,
		Total:       t.Total,
		CreatedAt:   o.CreatedAt(),
	}
	q.UoW.mu.Lock()
	defer q.UoW.mu.Unlock()
	for _, inv := range q.UoW.Invoices {
		if inv.OrderID == id {
			invID, status := inv.ID, string(inv.Status)
			v.InvoiceID = &invID
			v.InvoiceStatus = &status
		}
	}
	return v, nil
}

func (q OrderQueries) ListByClient(context.Context, uuid.UUID, *queries.Cursor, int) ([]*queries.OrderListItem, *queries.Cursor, error) {
	return nil, nil, nil
}

var _ queries.OrderQueries = OrderQueries{}
