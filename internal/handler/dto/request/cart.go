package request

import (
	"storefront/internal/domain/cart"
	"storefront/internal/usecase/commands"

	"github.com/google/uuid"
)

type SelectionRequest struct {
	PricingID uuid.UUID         `json:"pricing_id" binding:"required"`
	GroupID   uuid.UUID         `json:"group_id" binding:"required"`
	Domain    string            `json:"domain" binding:"omitempty,max=253"`
	Meta      map[string]string `json:"meta"`
	Qty       int               `json:"qty" binding:"omitempty,min=1,max=1000"`
}

func (r SelectionRequest) ToSelection() cart.Selection {
	return cart.Selection{
		PricingID: r.PricingID,
		GroupID:   r.GroupID,
		Domain:    r.Domain,
		Meta:      r.Meta,
		Qty:       r.Qty,
	}
}

type AddToCartRequest struct {
	Selections   []SelectionRequest `json:"selections" binding:"required,min=1,max=50,dive"`
	SkipCheckout bool               `json:"skip_checkout"`
}

func (r *AddToCartRequest) ToInput(formLabel string, clientID *uuid.UUID) commands.AddToCartInput {
	sels := make([]cart.Selection, len(r.Selections))
	for i, s := range r.Selections {
		sels[i] = s.ToSelection()
	}
	return commands.AddToCartInput{
		FormLabel:    formLabel,
		ClientID:     clientID,
		Selections:   sels,
		SkipCheckout: r.SkipCheckout,
	}
}

type CouponRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

type CurrencyRequest struct {
	Code string `json:"code" binding:"required,len=3,alpha"`
}
