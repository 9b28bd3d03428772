package request

import (
	"storefront/internal/domain/cart"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
)

// ErrAmbiguousConfigRequest is returned when the parameters name no entry
// or more than one.
var ErrAmbiguousConfigRequest = errs.New("exactly one of pricing_id+group_id, item or q_item is required")

// ConfigTarget holds the parameters that pick which entry is configured.
type ConfigTarget struct {
	PricingID string `form:"pricing_id" json:"pricing_id" binding:"omitempty,uuid"`
	GroupID   string `form:"group_id" json:"group_id" binding:"omitempty,uuid"`
	Domain    string `form:"domain" json:"domain" binding:"omitempty,max=253"`
	Item      *int   `form:"item" json:"item" binding:"omitempty,min=0"`
	QItem     *int   `form:"q_item" json:"q_item" binding:"omitempty,min=0"`
}

// ToConfigRequest decodes the target into its variant.
func (t ConfigTarget) ToConfigRequest() (commands.ConfigRequest, error) {
	set := 0
	if t.PricingID != "" || t.GroupID != "" {
		set++
	}
	if t.Item != nil {
		set++
	}
	if t.QItem != nil {
		set++
	}
	if set != 1 {
		return nil, ErrAmbiguousConfigRequest
	}

	switch {
	case t.Item != nil:
		return commands.EditExisting{ItemIndex: *t.Item}, nil
	case t.QItem != nil:
		return commands.ResumeQueue{QueueIndex: *t.QItem}, nil
	}

	pricingID, err := uuid.Parse(t.PricingID)
	if err != nil {
		return nil, ErrAmbiguousConfigRequest
	}
	groupID, err := uuid.Parse(t.GroupID)
	if err != nil {
		return nil, ErrAmbiguousConfigRequest
	}
	return commands.NewFromSelection{PricingID: pricingID, GroupID: groupID, Domain: t.Domain}, nil
}

type PrepareConfigQuery struct {
	ConfigTarget
	Ajax bool `form:"ajax"`
}

type SubmitConfigRequest struct {
	ConfigTarget
	Nonce   uuid.UUID          `json:"nonce"`
	Fields  map[string]string  `json:"fields"`
	Options map[string]string  `json:"options"`
	Addons  []SelectionRequest `json:"addons" binding:"omitempty,max=50,dive"`
	Qty     int                `json:"qty" binding:"omitempty,min=1,max=1000"`
}

func (r *SubmitConfigRequest) ToInput(formLabel string, clientID *uuid.UUID) (commands.SubmitInput, error) {
	req, err := r.ToConfigRequest()
	if err != nil {
		return commands.SubmitInput{}, err
	}
	var addons []cart.Selection
	if r.Addons != nil {
		addons = make([]cart.Selection, len(r.Addons))
		for i, a := range r.Addons {
			addons[i] = a.ToSelection()
		}
	}
	return commands.SubmitInput{
		FormLabel: formLabel,
		ClientID:  clientID,
		Request:   req,
		Nonce:     r.Nonce,
		Fields:    r.Fields,
		Options:   r.Options,
		Addons:    addons,
		Qty:       r.Qty,
	}, nil
}

type PackageOptionsRequest struct {
	PricingID uuid.UUID         `json:"pricing_id" binding:"required"`
	Selected  map[string]string `json:"selected"`
}

func (r *PackageOptionsRequest) ToInput() commands.PackageOptionsInput {
	return commands.PackageOptionsInput{PricingID: r.PricingID, Selected: r.Selected}
}
