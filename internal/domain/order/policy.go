package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type FraudResult struct {
	Status FraudStatus
	Report string
}

// ThresholdScreener flags orders whose total exceeds Threshold for review.
// A zero threshold disables the rule. A verdict already recorded on the
// session (prior) is never downgraded.
type ThresholdScreener struct {
	Threshold decimal.Decimal
}

func (s ThresholdScreener) Screen(total decimal.Decimal, currency string, prior FraudStatus) FraudResult {
	res := FraudResult{Status: FraudAllow}
	if s.Threshold.IsPositive() && total.GreaterThan(s.Threshold) {
		res = FraudResult{
			Status: FraudReview,
			Report: fmt.Sprintf("order total %s %s exceeds review threshold %s", total.StringFixed(2), currency, s.Threshold.String()),
		}
	}
	if prior.severity() > res.Status.severity() {
		res = FraudResult{Status: prior, Report: "flagged during session screening"}
	}
	return res
}

// HoldPolicy decides whether a new order is accepted or held as pending.
type HoldPolicy struct {
	ManualReview   bool
	HoldUnverified bool
}

func (p HoldPolicy) Decide(emailVerified bool, fraud FraudStatus) Status {
	switch {
	case p.ManualReview:
		return StatusPending
	case fraud == FraudReview:
		return StatusPending
	case p.HoldUnverified && !emailVerified:
		return StatusPending
	default:
		return StatusAccepted
	}
}
