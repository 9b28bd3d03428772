package cart

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Item is one package selection, either queued for configuration or in the cart.
// UUID correlates an addon to its parent and doubles as the promotion nonce.
type Item struct {
	UUID      uuid.UUID         `json:"uuid"`
	PricingID uuid.UUID         `json:"pricing_id"`
	GroupID   uuid.UUID         `json:"group_id"`
	Domain    string            `json:"domain,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
	Qty       int               `json:"qty"`
	Addons    []uuid.UUID       `json:"addons,omitempty"`
}

// Selection is the raw package choice coming from a catalog page or add-to-cart call.
type Selection struct {
	PricingID uuid.UUID
	GroupID   uuid.UUID
	Domain    string
	Meta      map[string]string
	Qty       int
}

// Clone returns a deep copy so callers never alias the stored maps and slices.
func (i Item) Clone() Item {
	out := i
	out.Meta = maps.Clone(i.Meta)
	out.Options = maps.Clone(i.Options)
	out.Addons = slices.Clone(i.Addons)
	return out
}

func (i Item) HasAddon(id uuid.UUID) bool {
	return slices.Contains(i.Addons, id)
}

func (i Item) Quantity() int {
	if i.Qty < 1 {
		return 1
	}
	return i.Qty
}
