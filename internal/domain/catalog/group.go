package catalog

import "github.com/google/uuid"

type GroupType string

const (
	GroupStandard GroupType = "standard"
	GroupAddon    GroupType = "addon"
	GroupDomain   GroupType = "domain"
)

type Group struct {
	ID   uuid.UUID
	Name string
	Type GroupType
}

func (g Group) IsDomain() bool { return g.Type == GroupDomain }

// AddonGroup is an addon group with the packages offered in it.
type AddonGroup struct {
	Group
	Packages []Package
}

// Offers reports whether pricingID belongs to a package of the group.
func (g AddonGroup) Offers(pricingID uuid.UUID) bool {
	for i := range g.Packages {
		if _, err := g.Packages[i].PricingByID(pricingID); err == nil {
			return true
		}
	}
	return false
}
