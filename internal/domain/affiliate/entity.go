package affiliate

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInactive              = errors.New("affiliate is not active")
	ErrSelfReferral          = errors.New("affiliates cannot refer themselves")
	ErrNothingCommissionable = errors.New("order has no commissionable amount")
	ErrRepeatOrder           = errors.New("affiliate only earns on first orders")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Affiliate struct {
	ID       uuid.UUID
	ClientID uuid.UUID
	Code     string
	Status   Status
}

func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "pending"
	ReferralMature   ReferralStatus = "mature"
	ReferralCanceled ReferralStatus = "canceled"
)

// Referral credits an affiliate for an order. Commission is fixed at creation.
type Referral struct {
	ID          uuid.UUID
	AffiliateID uuid.UUID
	OrderID     uuid.UUID
	Status      ReferralStatus
	Amount      decimal.Decimal
	Commission  decimal.Decimal
	Currency    string
	CreatedAt   time.Time
}

type ReferralInput struct {
	Affiliate      Affiliate
	Settings       Settings
	OrderID        uuid.UUID
	PurchaserID    uuid.UUID
	Commissionable decimal.Decimal
	Currency       string
	// PriorOrders counts the purchaser's orders before this one.
	PriorOrders int
	Now         time.Time
}

// NewReferral applies the eligibility rules and computes the commission.
func NewReferral(in ReferralInput) (*Referral, error) {
	if in.Affiliate.Status != StatusActive {
		return nil, ErrInactive
	}
	if in.Affiliate.ClientID == in.PurchaserID {
		return nil, ErrSelfReferral
	}
	if !in.Commissionable.IsPositive() {
		return nil, ErrNothingCommissionable
	}
	if in.Settings.OrderFrequency() == FrequencyFirst && in.PriorOrders > 0 {
		return nil, ErrRepeatOrder
	}

	commission, err := in.Settings.Commission(in.Commissionable)
	if err != nil {
		return nil, err
	}

	return &Referral{
		ID:          uuid.New(),
		AffiliateID: in.Affiliate.ID,
		OrderID:     in.OrderID,
		Status:      ReferralPending,
		Amount:      in.Commissionable,
		Commission:  commission,
		Currency:    in.Currency,
		CreatedAt:   in.Now,
	}, nil
}
