package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodYear    Period = "year"
	PeriodOnetime Period = "onetime"
)

type Pricing struct {
	ID        uuid.UUID
	PackageID uuid.UUID
	Term      int
	Period    Period
	Price     decimal.Decimal
	SetupFee  decimal.Decimal
	Currency  string
}

// Validate checks the billing term. One-time pricings carry term 0.
func (p Pricing) Validate() error {
	switch p.Period {
	case PeriodOnetime:
		if p.Term != 0 {
			return ErrInvalidTerm
		}
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		if p.Term < 1 {
			return ErrInvalidTerm
		}
	default:
		return ErrInvalidTerm
	}
	if p.Price.IsNegative() || p.SetupFee.IsNegative() {
		return ErrInvalidTerm
	}
	return nil
}

// FirstCharge is what a single unit costs on the first invoice.
func (p Pricing) FirstCharge() decimal.Decimal {
	return p.Price.Add(p.SetupFee)
}
