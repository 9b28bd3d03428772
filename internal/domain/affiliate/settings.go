package affiliate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownCommissionType = errors.New("unknown commission type")

const (
	KeyCommissionType   = "commission_type"
	KeyCommissionAmount = "commission_amount"
	KeyOrderFrequency   = "order_frequency"
)

type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFlat       CommissionType = "flat"
	// CommissionFlatAmount is accepted as another name for flat.
	CommissionFlatAmount CommissionType = "amount"
)

type Frequency string

const (
	FrequencyFirst Frequency = "first"
	FrequencyAny   Frequency = "any"
)

// Settings is the affiliate's key/value configuration.
type Settings map[string]string

// CommissionType reads the configured type. Unset means percentage.
func (s Settings) CommissionType() (CommissionType, error) {
	switch t := CommissionType(strings.ToLower(strings.TrimSpace(s[KeyCommissionType]))); t {
	case "", CommissionPercentage:
		return CommissionPercentage, nil
	case CommissionFlat, CommissionFlatAmount:
		return CommissionFlat, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommissionType, t)
	}
}

func (s Settings) CommissionAmount() decimal.Decimal {
	v, err := decimal.NewFromString(s[KeyCommissionAmount])
	if err != nil || v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func (s Settings) OrderFrequency() Frequency {
	if Frequency(s[KeyOrderFrequency]) == FrequencyAny {
		return FrequencyAny
	}
	return FrequencyFirst
}

// Commission for a commissionable amount: a percentage of it, or the flat amount.
func (s Settings) Commission(amount decimal.Decimal) (decimal.Decimal, error) {
	typ, err := s.CommissionType()
	if err != nil {
		return decimal.Zero, err
	}
	if typ == CommissionFlat {
		return s.CommissionAmount(), nil
	}
	return amount.Mul(s.CommissionAmount()).Div(decimal.NewFromInt(100)).Round(2), nil
}
