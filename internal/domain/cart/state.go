package cart

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrItemIndex    = errors.New("cart item index out of range")
	ErrQueueIndex   = errors.New("queue index out of range")
	ErrUnknownEntry = errors.New("cart entry not found")
)

// Keys accepted by Data/SetData.
const (
	KeyCurrency     = "currency"
	KeyCoupon       = "coupon"
	KeyTempCoupon   = "temp_coupon"
	KeyFraudStatus  = "fraud_status"
	KeyFraudReport  = "fraud_report"
	KeySkipCheckout = "skip_checkout"
)

// State is the per-session cart: confirmed items, the configuration queue and
// session-scoped data. An item UUID lives in at most one of Items or Queue.
type State struct {
	Items        []Item            `json:"items"`
	Queue        []Item            `json:"queue"`
	Currency     string            `json:"currency,omitempty"`
	Coupon       string            `json:"coupon,omitempty"`
	TempCoupon   string            `json:"temp_coupon,omitempty"`
	FraudStatus  string            `json:"fraud_status,omitempty"`
	FraudReport  string            `json:"fraud_report,omitempty"`
	SkipCheckout bool              `json:"skip_checkout,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
	// Checkout is the order attempt made from these items. It is cleared
	// together with them.
	Checkout *CheckoutMark `json:"checkout,omitempty"`

	// Version is owned by the session store and bumped on every successful save.
	Version int64 `json:"version"`
}

// CheckoutMark ties a cart snapshot to the idempotency key that ordered it.
type CheckoutMark struct {
	Key  uuid.UUID `json:"key"`
	Hash string    `json:"hash"`
}

func NewState() *State {
	return &State{Items: []Item{}, Queue: []Item{}}
}

func (s *State) Data(key string) string {
	switch key {
	case KeyCurrency:
		return s.Currency
	case KeyCoupon:
		return s.Coupon
	case KeyTempCoupon:
		return s.TempCoupon
	case KeyFraudStatus:
		return s.FraudStatus
	case KeyFraudReport:
		return s.FraudReport
	case KeySkipCheckout:
		if s.SkipCheckout {
			return "true"
		}
		return ""
	default:
		return s.Extra[key]
	}
}

// SetData stores a session value; an empty value clears it.
func (s *State) SetData(key, value string) {
	switch key {
	case KeyCurrency:
		s.Currency = strings.ToUpper(value)
	case KeyCoupon:
		s.Coupon = value
	case KeyTempCoupon:
		s.TempCoupon = value
	case KeyFraudStatus:
		s.FraudStatus = value
	case KeyFraudReport:
		s.FraudReport = value
	case KeySkipCheckout:
		s.SkipCheckout = value != "" && value != "false" && value != "0"
	default:
		if value == "" {
			delete(s.Extra, key)
			return
		}
		if s.Extra == nil {
			s.Extra = map[string]string{}
		}
		s.Extra[key] = value
	}
}

func (s *State) IsEmptyCart() bool  { return len(s.Items) == 0 }
func (s *State) IsEmptyQueue() bool { return len(s.Queue) == 0 }

func (s *State) GetItem(index int) (Item, bool) {
	if index < 0 || index >= len(s.Items) {
		return Item{}, false
	}
	return s.Items[index].Clone(), true
}

// AddItem appends to the cart and returns the new index.
func (s *State) AddItem(item Item) int {
	s.Items = append(s.Items, normalize(item))
	return len(s.Items) - 1
}

// UpdateItem replaces the item at index, keeping its UUID when the
// replacement carries none.
func (s *State) UpdateItem(index int, item Item) error {
	if index < 0 || index >= len(s.Items) {
		return ErrItemIndex
	}
	if item.UUID == uuid.Nil {
		item.UUID = s.Items[index].UUID
	}
	s.Items[index] = normalize(item)
	return nil
}

// RemoveItem removes the item at index together with every addon linked to it.
func (s *State) RemoveItem(index int) (Item, error) {
	if index < 0 || index >= len(s.Items) {
		return Item{}, ErrItemIndex
	}
	removed := s.Items[index]
	s.Items = append(s.Items[:index:index], s.Items[index+1:]...)
	s.removeCascade(removed.Addons)
	s.unlink(removed.UUID)
	return removed, nil
}

// EmptyCart drops every item, queued entry and coupon. Currency survives.
func (s *State) EmptyCart() {
	s.Items = []Item{}
	s.Queue = []Item{}
	s.Coupon = ""
	s.TempCoupon = ""
	s.FraudStatus = ""
	s.FraudReport = ""
	s.SkipCheckout = false
	s.Checkout = nil
}

// MarkCheckout records that key is ordering the cart fingerprinted by hash.
func (s *State) MarkCheckout(key uuid.UUID, hash string) {
	s.Checkout = &CheckoutMark{Key: key, Hash: hash}
}

// PriorCheckout returns the mark left by another key for the same snapshot.
func (s *State) PriorCheckout(key uuid.UUID, hash string) (CheckoutMark, bool) {
	if s.Checkout == nil || s.Checkout.Key == key || s.Checkout.Hash != hash {
		return CheckoutMark{}, false
	}
	return *s.Checkout, true
}

func (s *State) Enqueue(item Item) int {
	s.Queue = append(s.Queue, normalize(item))
	return len(s.Queue) - 1
}

func (s *State) Dequeue(index int) (Item, error) {
	if index < 0 || index >= len(s.Queue) {
		return Item{}, ErrQueueIndex
	}
	removed := s.Queue[index]
	s.Queue = append(s.Queue[:index:index], s.Queue[index+1:]...)
	return removed, nil
}

// RemoveQueued drops the queue entry at index together with its addons and
// detaches it from the entry that listed it as an addon.
func (s *State) RemoveQueued(index int) (Item, error) {
	removed, err := s.Dequeue(index)
	if err != nil {
		return Item{}, err
	}
	s.removeCascade(removed.Addons)
	s.unlink(removed.UUID)
	return removed, nil
}

func (s *State) CheckQueue(index int) (Item, bool) {
	if index < 0 || index >= len(s.Queue) {
		return Item{}, false
	}
	return s.Queue[index].Clone(), true
}

// PrequeueItem shapes a raw selection into an item without storing it.
func (s *State) PrequeueItem(sel Selection) Item {
	item := Item{
		UUID:      uuid.New(),
		PricingID: sel.PricingID,
		GroupID:   sel.GroupID,
		Domain:    strings.TrimSpace(sel.Domain),
		Meta:      maps.Clone(sel.Meta),
		Qty:       sel.Qty,
	}
	if item.Domain != "" {
		if item.Meta == nil {
			item.Meta = map[string]string{}
		}
		item.Meta["domain"] = item.Domain
	}
	return normalize(item)
}

// Promote moves the queue entry at qIndex into the cart as item. Both
// steps happen or neither does. The entry UUID is preserved.
func (s *State) Promote(qIndex int, item Item) (int, error) {
	if qIndex < 0 || qIndex >= len(s.Queue) {
		return -1, ErrQueueIndex
	}
	entry := s.Queue[qIndex]
	item.UUID = entry.UUID
	if len(item.Addons) == 0 {
		item.Addons = entry.Addons
	}
	s.Queue = append(s.Queue[:qIndex:qIndex], s.Queue[qIndex+1:]...)
	return s.AddItem(item), nil
}

// FindItem locates an entry by UUID. inQueue reports which list holds it.
func (s *State) FindItem(id uuid.UUID) (index int, inQueue bool, ok bool) {
	for i := range s.Items {
		if s.Items[i].UUID == id {
			return i, false, true
		}
	}
	for i := range s.Queue {
		if s.Queue[i].UUID == id {
			return i, true, true
		}
	}
	return -1, false, false
}

// ReplaceAddons drops the addons currently linked to parent (cascading) and
// queues entries as its new addons. It returns the indexes of the queued entries.
func (s *State) ReplaceAddons(parent uuid.UUID, entries []Item) ([]int, error) {
	if _, _, ok := s.FindItem(parent); !ok {
		return nil, ErrUnknownEntry
	}
	old := s.addonsOf(parent)
	s.setAddons(parent, nil)
	s.removeCascade(old)

	ids := make([]uuid.UUID, 0, len(entries))
	indexes := make([]int, 0, len(entries))
	for _, e := range entries {
		e = normalize(e)
		ids = append(ids, e.UUID)
		indexes = append(indexes, s.Enqueue(e))
	}
	s.setAddons(parent, ids)
	return indexes, nil
}

// ParentOf returns the entry that lists id as an addon.
func (s *State) ParentOf(id uuid.UUID) (Item, bool) {
	for _, it := range s.Items {
		if it.HasAddon(id) {
			return it.Clone(), true
		}
	}
	for _, it := range s.Queue {
		if it.HasAddon(id) {
			return it.Clone(), true
		}
	}
	return Item{}, false
}

// DuplicateDomain reports whether domain is already held by another entry
// in the cart or the queue. Comparison is case-insensitive.
func (s *State) DuplicateDomain(domain string, except uuid.UUID) bool {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return false
	}
	match := func(it Item) bool {
		if it.UUID == except {
			return false
		}
		return strings.TrimSuffix(strings.ToLower(it.Domain), ".") == domain
	}
	for _, it := range s.Items {
		if match(it) {
			return true
		}
	}
	for _, it := range s.Queue {
		if match(it) {
			return true
		}
	}
	return false
}

// CountPricings counts cart items whose pricing is one of ids, skipping except.
func (s *State) CountPricings(ids map[uuid.UUID]struct{}, except uuid.UUID) int {
	n := 0
	for _, it := range s.Items {
		if it.UUID == except {
			continue
		}
		if _, ok := ids[it.PricingID]; ok {
			n += it.Quantity()
		}
	}
	return n
}

// ClearTempCoupon forgets a coupon that was entered but never applied.
func (s *State) ClearTempCoupon() {
	s.TempCoupon = ""
}

func (s *State) addonsOf(id uuid.UUID) []uuid.UUID {
	idx, inQueue, ok := s.FindItem(id)
	if !ok {
		return nil
	}
	if inQueue {
		return s.Queue[idx].Addons
	}
	return s.Items[idx].Addons
}

func (s *State) setAddons(id uuid.UUID, addons []uuid.UUID) {
	idx, inQueue, ok := s.FindItem(id)
	if !ok {
		return
	}
	if inQueue {
		s.Queue[idx].Addons = addons
		return
	}
	s.Items[idx].Addons = addons
}

// unlink removes id from its parent's addon list.
func (s *State) unlink(id uuid.UUID) {
	parent, ok := s.ParentOf(id)
	if !ok {
		return
	}
	s.setAddons(parent.UUID, slices.DeleteFunc(parent.Addons, func(a uuid.UUID) bool { return a == id }))
}

// removeCascade deletes the given entries and, transitively, their addons.
func (s *State) removeCascade(ids []uuid.UUID) {
	pending := append([]uuid.UUID(nil), ids...)
	seen := map[uuid.UUID]struct{}{}
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		idx, inQueue, ok := s.FindItem(id)
		if !ok {
			continue
		}
		var removed Item
		if inQueue {
			removed = s.Queue[idx]
			s.Queue = append(s.Queue[:idx:idx], s.Queue[idx+1:]...)
		} else {
			removed = s.Items[idx]
			s.Items = append(s.Items[:idx:idx], s.Items[idx+1:]...)
		}
		pending = append(pending, removed.Addons...)
	}
}

func normalize(item Item) Item {
	if item.UUID == uuid.Nil {
		item.UUID = uuid.New()
	}
	if item.Qty < 1 {
		item.Qty = 1
	}
	return item
}
