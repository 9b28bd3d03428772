package order

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusComplete Status = "complete"
)

func (s Status) String() string { return string(s) }

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

type FraudStatus string

const (
	FraudAllow  FraudStatus = "allow"
	FraudReview FraudStatus = "review"
	FraudReject FraudStatus = "reject"
)

// ParseFraudStatus maps unknown values to allow.
func ParseFraudStatus(s string) FraudStatus {
	switch FraudStatus(s) {
	case FraudReview, FraudReject:
		return FraudStatus(s)
	default:
		return FraudAllow
	}
}

// severity orders statuses so the strictest verdict wins.
func (s FraudStatus) severity() int {
	switch s {
	case FraudReject:
		return 2
	case FraudReview:
		return 1
	default:
		return 0
	}
}
