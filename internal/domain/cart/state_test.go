//go:build unit

package cart_test

import (
	"testing"

	"storefront/internal/domain/cart"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cmpOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
}

func newItem(domain string) cart.Item {
	return cart.Item{UUID: uuid.New(), PricingID: uuid.New(), GroupID: uuid.New(), Domain: domain, Qty: 1}
}

// assertDisjoint checks that no UUID appears twice across cart and queue.
func assertDisjoint(t *testing.T, st *cart.State) {
	t.Helper()
	seen := map[uuid.UUID]string{}
	for _, it := range st.Items {
		_, dup := seen[it.UUID]
		assert.False(t, dup, "uuid %s duplicated in items", it.UUID)
		seen[it.UUID] = "items"
	}
	for _, it := range st.Queue {
		where, dup := seen[it.UUID]
		assert.False(t, dup, "uuid %s in queue already present in %s", it.UUID, where)
		seen[it.UUID] = "queue"
	}
}

func TestState_DataKeys(t *testing.T) {
	st := cart.NewState()

	st.SetData(cart.KeyCurrency, "eur")
	st.SetData(cart.KeySkipCheckout, "true")
	st.SetData("campaign", "spring")

	assert.Equal(t, "EUR", st.Data(cart.KeyCurrency))
	assert.Equal(t, "true", st.Data(cart.KeySkipCheckout))
	assert.Equal(t, "spring", st.Data("campaign"))

	st.SetData("campaign", "")
	st.SetData(cart.KeySkipCheckout, "false")
	assert.Empty(t, st.Data("campaign"))
	assert.False(t, st.SkipCheckout)
}

func TestState_QueueAndItems(t *testing.T) {
	st := cart.NewState()
	require.True(t, st.IsEmptyCart())
	require.True(t, st.IsEmptyQueue())

	a, b := newItem(""), newItem("")
	assert.Equal(t, 0, st.Enqueue(a))
	assert.Equal(t, 1, st.Enqueue(b))

	got, ok := st.CheckQueue(1)
	require.True(t, ok)
	if diff := cmp.Diff(b, got, cmpOpts...); diff != "" {
		t.Errorf("queue entry mismatch (-want +got):\n%s", diff)
	}

	_, ok = st.CheckQueue(2)
	assert.False(t, ok)

	removed, err := st.Dequeue(0)
	require.NoError(t, err)
	assert.Equal(t, a.UUID, removed.UUID)
	assert.Len(t, st.Queue, 1)

	_, err = st.Dequeue(5)
	assert.ErrorIs(t, err, cart.ErrQueueIndex)

	t.Run("update keeps uuid when replacement has none", func(t *testing.T) {
		idx := st.AddItem(newItem(""))
		orig, _ := st.GetItem(idx)

		require.NoError(t, st.UpdateItem(idx, cart.Item{PricingID: uuid.New(), Qty: 3}))
		updated, _ := st.GetItem(idx)
		assert.Equal(t, orig.UUID, updated.UUID)
		assert.Equal(t, 3, updated.Qty)

		assert.ErrorIs(t, st.UpdateItem(9, cart.Item{}), cart.ErrItemIndex)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		idx := st.AddItem(cart.Item{Meta: map[string]string{"k": "v"}})
		got, _ := st.GetItem(idx)
		got.Meta["k"] = "changed"
		again, _ := st.GetItem(idx)
		assert.Equal(t, "v", again.Meta["k"])
	})
}

func TestState_Promote(t *testing.T) {
	st := cart.NewState()
	entry := newItem("example.com")
	st.Enqueue(entry)

	configured := entry
	configured.UUID = uuid.Nil
	configured.Meta = map[string]string{"domain": "example.com"}
	configured.Qty = 2

	idx, err := st.Promote(0, configured)
	require.NoError(t, err)

	assert.True(t, st.IsEmptyQueue())
	got, ok := st.GetItem(idx)
	require.True(t, ok)
	assert.Equal(t, entry.UUID, got.UUID, "promotion keeps the entry uuid")
	assert.Equal(t, 2, got.Qty)
	assertDisjoint(t, st)

	t.Run("out of range leaves state untouched", func(t *testing.T) {
		before := *st
		_, err := st.Promote(0, newItem(""))
		assert.ErrorIs(t, err, cart.ErrQueueIndex)
		if diff := cmp.Diff(before, *st, cmpOpts...); diff != "" {
			t.Errorf("state changed on failed promote (-want +got):\n%s", diff)
		}
	})
}

func TestState_RemoveItemCascadesAddons(t *testing.T) {
	st := cart.NewState()
	parent := newItem("")
	parentIdx := st.AddItem(parent)

	addonA, addonB := newItem(""), newItem("")
	_, err := st.ReplaceAddons(parent.UUID, []cart.Item{addonA, addonB})
	require.NoError(t, err)

	// promote one addon into the cart, leave the other queued
	_, err = st.Promote(0, addonA)
	require.NoError(t, err)

	// nested addon under addonA
	nested := newItem("")
	_, err = st.ReplaceAddons(addonA.UUID, []cart.Item{nested})
	require.NoError(t, err)

	unrelated := newItem("")
	st.AddItem(unrelated)
	assertDisjoint(t, st)

	removed, err := st.RemoveItem(parentIdx)
	require.NoError(t, err)
	assert.Equal(t, parent.UUID, removed.UUID)

	require.Len(t, st.Items, 1)
	assert.Equal(t, unrelated.UUID, st.Items[0].UUID)
	assert.True(t, st.IsEmptyQueue(), "queued addons of the removed parent are gone too")

	for _, id := range []uuid.UUID{addonA.UUID, addonB.UUID, nested.UUID} {
		_, _, ok := st.FindItem(id)
		assert.False(t, ok, "addon %s should have been removed", id)
	}
}

func TestState_ReplaceAddons(t *testing.T) {
	st := cart.NewState()
	parent := newItem("")
	st.AddItem(parent)

	first := newItem("")
	_, err := st.ReplaceAddons(parent.UUID, []cart.Item{first})
	require.NoError(t, err)

	second := newItem("")
	idx, err := st.ReplaceAddons(parent.UUID, []cart.Item{second})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, idx)

	require.Len(t, st.Queue, 1)
	assert.Equal(t, second.UUID, st.Queue[0].UUID)
	assert.Equal(t, []uuid.UUID{second.UUID}, st.Items[0].Addons)

	got, ok := st.ParentOf(second.UUID)
	require.True(t, ok)
	assert.Equal(t, parent.UUID, got.UUID)

	_, err = st.ReplaceAddons(uuid.New(), nil)
	assert.ErrorIs(t, err, cart.ErrUnknownEntry)
}

func TestState_RemoveQueued(t *testing.T) {
	t.Run("addon is detached from its parent", func(t *testing.T) {
		st := cart.NewState()
		parent := newItem("")
		sibling := newItem("")
		st.AddItem(parent)
		ssl := newItem("")
		_, err := st.ReplaceAddons(parent.UUID, []cart.Item{ssl, sibling})
		require.NoError(t, err)

		removed, err := st.RemoveQueued(0)
		require.NoError(t, err)
		assert.Equal(t, ssl.UUID, removed.UUID)

		require.Len(t, st.Queue, 1)
		assert.Equal(t, sibling.UUID, st.Queue[0].UUID)
		assert.Equal(t, []uuid.UUID{sibling.UUID}, st.Items[0].Addons)
		_, ok := st.ParentOf(ssl.UUID)
		assert.False(t, ok)
	})

	t.Run("queued addons of the entry go with it", func(t *testing.T) {
		st := cart.NewState()
		entry := newItem("example.com")
		st.Enqueue(entry)
		nested := newItem("")
		_, err := st.ReplaceAddons(entry.UUID, []cart.Item{nested})
		require.NoError(t, err)
		keep := newItem("")
		st.Enqueue(keep)

		_, err = st.RemoveQueued(0)
		require.NoError(t, err)

		require.Len(t, st.Queue, 1)
		assert.Equal(t, keep.UUID, st.Queue[0].UUID)
		_, _, ok := st.FindItem(nested.UUID)
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		st := cart.NewState()
		_, err := st.RemoveQueued(0)
		assert.ErrorIs(t, err, cart.ErrQueueIndex)
	})
}

func TestState_DuplicateDomain(t *testing.T) {
	st := cart.NewState()
	inCart := newItem("Example.com")
	st.AddItem(inCart)
	queued := newItem("queued.net")
	st.Enqueue(queued)

	tests := []struct {
		name   string
		domain string
		except uuid.UUID
		want   bool
	}{
		{name: "case-insensitive match in cart", domain: "example.COM", want: true},
		{name: "trailing dot ignored", domain: "example.com.", want: true},
		{name: "match in queue", domain: "queued.net", want: true},
		{name: "same entry is excluded", domain: "example.com", except: inCart.UUID, want: false},
		{name: "different domain", domain: "other.org", want: false},
		{name: "empty domain never duplicates", domain: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, st.DuplicateDomain(tt.domain, tt.except))
		})
	}
}

func TestState_EmptyCart(t *testing.T) {
	st := cart.NewState()
	st.AddItem(newItem(""))
	st.Enqueue(newItem(""))
	st.SetData(cart.KeyCurrency, "EUR")
	st.SetData(cart.KeyCoupon, "SAVE10")
	st.SetData(cart.KeyTempCoupon, "SAVE20")
	st.MarkCheckout(uuid.New(), "hash")

	st.EmptyCart()

	assert.True(t, st.IsEmptyCart())
	assert.True(t, st.IsEmptyQueue())
	assert.Empty(t, st.Coupon)
	assert.Empty(t, st.TempCoupon)
	assert.Nil(t, st.Checkout)
	assert.Equal(t, "EUR", st.Currency)
}

func TestState_PriorCheckout(t *testing.T) {
	st := cart.NewState()
	key := uuid.New()

	_, ok := st.PriorCheckout(uuid.New(), "hash")
	assert.False(t, ok, "no mark yet")

	st.MarkCheckout(key, "hash")

	mark, ok := st.PriorCheckout(uuid.New(), "hash")
	require.True(t, ok)
	assert.Equal(t, key, mark.Key)

	_, ok = st.PriorCheckout(key, "hash")
	assert.False(t, ok, "the marking key is not its own prior")

	_, ok = st.PriorCheckout(uuid.New(), "other")
	assert.False(t, ok, "a changed cart is a new snapshot")
}

func TestState_PrequeueItem(t *testing.T) {
	st := cart.NewState()
	meta := map[string]string{"hostname": "vps1"}
	item := st.PrequeueItem(cart.Selection{PricingID: uuid.New(), GroupID: uuid.New(), Domain: " example.com ", Meta: meta})

	assert.NotEqual(t, uuid.Nil, item.UUID)
	assert.Equal(t, 1, item.Qty)
	assert.Equal(t, "example.com", item.Domain)
	assert.Equal(t, "example.com", item.Meta["domain"])
	assert.NotContains(t, meta, "domain", "caller's map is not modified")
	assert.True(t, st.IsEmptyQueue(), "prequeue does not store anything")
}

func TestState_CountPricings(t *testing.T) {
	st := cart.NewState()
	p := uuid.New()
	a := cart.Item{PricingID: p, Qty: 2}
	b := cart.Item{UUID: uuid.New(), PricingID: p}
	st.AddItem(a)
	st.AddItem(b)
	st.AddItem(cart.Item{PricingID: uuid.New()})

	ids := map[uuid.UUID]struct{}{p: {}}
	assert.Equal(t, 3, st.CountPricings(ids, uuid.Nil))
	assert.Equal(t, 2, st.CountPricings(ids, b.UUID))
}
