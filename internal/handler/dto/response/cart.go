package response

import (
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/google/uuid"
)

type CartResponse struct {
	Currency     string               `json:"currency"`
	Items        []CartLineResponse   `json:"items"`
	Queue        []QueueEntryResponse `json:"queue"`
	Subtotal     string               `json:"subtotal"`
	Discount     string               `json:"discount"`
	Total        string               `json:"total"`
	Coupon       string               `json:"coupon,omitempty"`
	CouponError  string               `json:"coupon_error,omitempty"`
	TempCoupon   string               `json:"temp_coupon,omitempty"`
	SkipCheckout bool                 `json:"skip_checkout"`
	CanCheckout  bool                 `json:"can_checkout"`
}

type CartLineResponse struct {
	Index      int               `json:"index"`
	UUID       uuid.UUID         `json:"uuid"`
	ParentUUID *uuid.UUID        `json:"parent_uuid,omitempty"`
	PricingID  uuid.UUID         `json:"pricing_id"`
	Name       string            `json:"name"`
	Domain     string            `json:"domain,omitempty"`
	Term       int               `json:"term"`
	Period     string            `json:"period"`
	Qty        int               `json:"qty"`
	Options    map[string]string `json:"options,omitempty"`
	UnitPrice  string            `json:"unit_price"`
	SetupFee   string            `json:"setup_fee"`
	Subtotal   string            `json:"subtotal"`
	Error      string            `json:"error,omitempty"`
}

type QueueEntryResponse struct {
	Index     int       `json:"index"`
	UUID      uuid.UUID `json:"uuid"`
	PricingID uuid.UUID `json:"pricing_id"`
	GroupID   uuid.UUID `json:"group_id"`
	Domain    string    `json:"domain,omitempty"`
}

func FromCartSummary(s *queries.CartSummary) (*CartResponse, error) {
	var res CartResponse
	if err := copyInto(&res, s); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []CartLineResponse{}
	}
	if res.Queue == nil {
		res.Queue = []QueueEntryResponse{}
	}
	return &res, nil
}

// StepResponse tells the client which page of the order flow comes next.
type StepResponse struct {
	Next        string `json:"next"`
	QueueIndex  *int   `json:"queue_index,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Notice      string `json:"notice,omitempty"`
}

func FromStep(s commands.Step) *StepResponse {
	res := &StepResponse{
		Next:        string(s.Kind),
		RedirectURL: s.RedirectURL,
		Notice:      s.Notice,
	}
	if s.Kind == commands.StepConfigure {
		idx := s.QueueIndex
		res.QueueIndex = &idx
	}
	return res
}
