package catalog

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrUnknownPricing = errors.New("pricing does not belong to package")
	ErrInvalidTerm    = errors.New("invalid pricing term")
)

type PackageStatus string

const (
	StatusActive     PackageStatus = "active"
	StatusInactive   PackageStatus = "inactive"
	StatusRestricted PackageStatus = "restricted"
)

// Package is a sellable product. Qty is remaining stock (nil = unlimited);
// ClientQty caps how many services one client may hold (nil = unlimited).
type Package struct {
	ID                uuid.UUID
	Name              string
	Module            string
	Status            PackageStatus
	Qty               *int
	ClientQty         *int
	AffiliateExcluded bool
	Pricings          []Pricing
	OptionGroups      []OptionGroup
	GroupIDs          []uuid.UUID
	AddonGroupIDs     []uuid.UUID
}

func (p *Package) IsActive() bool {
	return p.Status == StatusActive || p.Status == StatusRestricted
}

func (p *Package) IsRestricted() bool {
	return p.Status == StatusRestricted
}

func (p *Package) SoldOut() bool {
	return p.Qty != nil && *p.Qty <= 0
}

func (p *Package) InGroup(groupID uuid.UUID) bool {
	return slices.Contains(p.GroupIDs, groupID)
}

func (p *Package) PricingByID(id uuid.UUID) (Pricing, error) {
	for _, pr := range p.Pricings {
		if pr.ID == id {
			return pr, nil
		}
	}
	return Pricing{}, ErrUnknownPricing
}

// PricingIDs is the set used to count cart items of this package.
func (p *Package) PricingIDs() map[uuid.UUID]struct{} {
	ids := make(map[uuid.UUID]struct{}, len(p.Pricings))
	for _, pr := range p.Pricings {
		ids[pr.ID] = struct{}{}
	}
	return ids
}

// Options flattens every option across option groups.
func (p *Package) Options() []Option {
	var out []Option
	for _, g := range p.OptionGroups {
		out = append(out, g.Options...)
	}
	return out
}

// ExceedsClientLimit reports whether holding `held` units plus `adding`
// more would pass ClientQty.
func (p *Package) ExceedsClientLimit(held, adding int) bool {
	if p.ClientQty == nil {
		return false
	}
	return held+adding > *p.ClientQty
}
