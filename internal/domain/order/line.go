package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one purchased item. Prices are already in the order currency;
// UnitPrice includes configurable option prices.
type Line struct {
	ID                uuid.UUID
	ServiceID         uuid.UUID
	ItemUUID          uuid.UUID
	ParentItemUUID    *uuid.UUID
	PackageID         uuid.UUID
	PricingID         uuid.UUID
	GroupID           uuid.UUID
	Name              string
	Domain            string
	Meta              map[string]string
	Options           map[string]string
	Qty               int
	UnitPrice         decimal.Decimal
	SetupFee          decimal.Decimal
	AffiliateExcluded bool
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Add(l.SetupFee).Mul(decimal.NewFromInt(int64(l.Qty)))
}

type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals clamps the discount so the total never goes negative.
func ComputeTotals(lines []Line, discount decimal.Decimal) Totals {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(l.Subtotal())
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(sub) {
		discount = sub
	}
	return Totals{Subtotal: sub, Discount: discount, Total: sub.Sub(discount)}
}
