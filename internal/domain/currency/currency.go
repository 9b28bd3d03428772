package currency

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidRate = errors.New("exchange rate must be positive")

// Currency is expressed relative to the base currency (rate 1).
type Currency struct {
	Code         string
	ExchangeRate decimal.Decimal
	Precision    int32
}

func New(code string, rate decimal.Decimal, precision int32) (Currency, error) {
	if !rate.IsPositive() {
		return Currency{}, ErrInvalidRate
	}
	return Currency{Code: strings.ToUpper(code), ExchangeRate: rate, Precision: precision}, nil
}

// Convert moves amount from one currency to another through the base rate
// and rounds to the target precision.
func Convert(amount decimal.Decimal, from, to Currency) decimal.Decimal {
	if strings.EqualFold(from.Code, to.Code) {
		return amount.Round(to.Precision)
	}
	if !from.ExchangeRate.IsPositive() || !to.ExchangeRate.IsPositive() {
		return amount.Round(to.Precision)
	}
	return amount.Div(from.ExchangeRate).Mul(to.ExchangeRate).Round(to.Precision)
}
