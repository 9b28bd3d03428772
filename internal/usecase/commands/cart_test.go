//go:build unit

package commands_test

import (
	"context"
	"testing"

	"storefront/internal/domain/cart"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/shared"
	"storefront/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// AddToCart
// =============================================================================

func TestCartCommands_AddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("success: every selection is queued and the first one is configured next", func(t *testing.T) {
		f := newFixture(t)

		step, err := f.cart.AddToCart(ctx, sessionID, commands.AddToCartInput{
			FormLabel:  f.form.Label,
			Selections: []cart.Selection{f.selection(f.hosting, ""), f.selection(f.domain, "example.com")},
		})

		require.NoError(t, err)
		assert.Equal(t, commands.StepConfigure, step.Kind)
		assert.Equal(t, 0, step.QueueIndex)

		st := f.store.Get(sessionID)
		require.Len(t, st.Queue, 2)
		assert.True(t, st.IsEmptyCart())
		assert.Equal(t, "example.com", st.Queue[1].Domain)
		assert.Equal(t, "example.com", st.Queue[1].Meta["domain"])
	})

	t.Run("success: skip_checkout is remembered on the session", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.cart.AddToCart(ctx, sessionID, commands.AddToCartInput{
			FormLabel:    f.form.Label,
			Selections:   []cart.Selection{f.selection(f.simple, "")},
			SkipCheckout: true,
		})

		require.NoError(t, err)
		assert.True(t, f.store.Get(sessionID).SkipCheckout)
	})

	t.Run("error: one invalid selection rejects the whole request", func(t *testing.T) {
		f := newFixture(t)
		soldOut := *f.simple
		zero := 0
		soldOut.Qty = &zero
		f.reads.AddPackage(&soldOut)

		_, err := f.cart.AddToCart(ctx, sessionID, commands.AddToCartInput{
			FormLabel:  f.form.Label,
			Selections: []cart.Selection{f.selection(f.hosting, ""), f.selection(&soldOut, "")},
		})

		verr, ok := errs.AsValidation(err)
		require.True(t, ok, "expected validation error, got %v", err)
		assert.Contains(t, verr.Fields, "selections.1.pricing_id")
		assert.Empty(t, f.store.Get(sessionID).Queue)
	})

	t.Run("error: the same domain twice in one request", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.cart.AddToCart(ctx, sessionID, commands.AddToCartInput{
			FormLabel:  f.form.Label,
			Selections: []cart.Selection{f.selection(f.domain, "example.com"), f.selection(f.domain, "EXAMPLE.com")},
		})

		verr, ok := errs.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "selections.1.domain")
	})

	t.Run("error: group not on the order form", func(t *testing.T) {
		f := newFixture(t)
		sel := f.selection(f.ssl, "")

		_, err := f.cart.AddToCart(ctx, sessionID, commands.AddToCartInput{
			FormLabel:  f.form.Label,
			Selections: []cart.Selection{sel},
		})

		verr, ok := errs.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "selections.0.group_id")
	})

	t.Run("error: unknown order form", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.cart.AddToCart(ctx, sessionID, commands.AddToCartInput{
			FormLabel:  "missing",
			Selections: []cart.Selection{f.selection(f.hosting, "")},
		})

		assert.True(t, errs.Is(err, commands.ErrOrderFormNotFound))
	})

	t.Run("success: a concurrent save is retried", func(t *testing.T) {
		f := newFixture(t)
		f.store.ConflictsLeft = 2

		_, err := f.cart.AddToCart(ctx, sessionID, commands.AddToCartInput{
			FormLabel:  f.form.Label,
			Selections: []cart.Selection{f.selection(f.hosting, "")},
		})

		require.NoError(t, err)
		assert.Len(t, f.store.Get(sessionID).Queue, 1)
	})

	t.Run("error: retries exhausted", func(t *testing.T) {
		f := newFixture(t)
		f.store.ConflictsLeft = 10

		_, err := f.cart.AddToCart(ctx, sessionID, commands.AddToCartInput{
			FormLabel:  f.form.Label,
			Selections: []cart.Selection{f.selection(f.hosting, "")},
		})

		assert.True(t, errs.Is(err, shared.ErrCartConflict))
	})
}

// =============================================================================
// Removal
// =============================================================================

func TestCartCommands_RemoveItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	parent := f.item(f.hosting, "")
	addon := f.item(f.ssl, "")
	parent.Addons = []uuid.UUID{addon.UUID}
	other := f.item(f.simple, "")
	f.seedCart(parent, addon, other)

	require.NoError(t, f.cart.RemoveItem(ctx, sessionID, 0))

	st := f.store.Get(sessionID)
	require.Len(t, st.Items, 1)
	assert.Equal(t, other.UUID, st.Items[0].UUID)

	err := f.cart.RemoveItem(ctx, sessionID, 5)
	assert.True(t, errs.Is(err, commands.ErrItemNotFound))
}

func TestCartCommands_RemoveQueued(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	st := cart.NewState()
	st.Enqueue(f.item(f.hosting, ""))
	f.store.Put(sessionID, st)

	require.NoError(t, f.cart.RemoveQueued(ctx, sessionID, 0))
	assert.True(t, f.store.Get(sessionID).IsEmptyQueue())

	err := f.cart.RemoveQueued(ctx, sessionID, 0)
	assert.True(t, errs.Is(err, commands.ErrItemNotFound))

	// a queued addon is dropped from its parent as well
	parent := f.item(f.hosting, "")
	addon := f.item(f.ssl, "")
	parent.Addons = []uuid.UUID{addon.UUID}
	st = cart.NewState()
	st.AddItem(parent)
	st.Enqueue(addon)
	f.store.Put(sessionID, st)

	require.NoError(t, f.cart.RemoveQueued(ctx, sessionID, 0))
	got := f.store.Get(sessionID)
	assert.True(t, got.IsEmptyQueue())
	require.Len(t, got.Items, 1)
	assert.Empty(t, got.Items[0].Addons)
}

func TestCartCommands_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	st := f.seedCart(f.item(f.hosting, ""))
	st.Enqueue(f.item(f.simple, ""))
	st.Coupon = "SPRING"
	st.Currency = "EUR"
	f.store.Put(sessionID, st)

	require.NoError(t, f.cart.EmptyCart(ctx, sessionID))

	got := f.store.Get(sessionID)
	assert.True(t, got.IsEmptyCart())
	assert.True(t, got.IsEmptyQueue())
	assert.Empty(t, got.Coupon)
	assert.Equal(t, "EUR", got.Currency)
}

// =============================================================================
// Coupons and currency
// =============================================================================

func TestCartCommands_ApplyCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("success: valid code becomes the session coupon", func(t *testing.T) {
		f := newFixture(t)
		f.reads.AddCoupon(&shared.CouponSnapshot{ID: uuid.New(), Code: "SPRING", Type: "percent", Value: decimalOf("10"), Active: true})

		require.NoError(t, f.cart.ApplyCoupon(ctx, sessionID, f.form.Label, " spring "))

		st := f.store.Get(sessionID)
		assert.Equal(t, "SPRING", st.Coupon)
		assert.Empty(t, st.TempCoupon)
	})

	t.Run("error: unknown code is kept as temp_coupon", func(t *testing.T) {
		f := newFixture(t)

		err := f.cart.ApplyCoupon(ctx, sessionID, f.form.Label, "NOPE")

		assert.True(t, errs.Is(err, shared.ErrCouponNotFound))
		st := f.store.Get(sessionID)
		assert.Equal(t, "NOPE", st.TempCoupon)
		assert.Empty(t, st.Coupon)

		require.NoError(t, f.cart.ClearTempCoupon(ctx, sessionID))
		assert.Empty(t, f.store.Get(sessionID).TempCoupon)
	})

	t.Run("error: exhausted coupon is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.reads.AddCoupon(&shared.CouponSnapshot{ID: uuid.New(), Code: "USEDUP", Type: "amount", Value: decimalOf("5"), Currency: "USD", MaxQty: 1, UsedQty: 1, Active: true})

		err := f.cart.ApplyCoupon(ctx, sessionID, f.form.Label, "USEDUP")

		assert.True(t, errs.Is(err, shared.ErrCouponRejected))
	})

	t.Run("error: order form without coupons", func(t *testing.T) {
		f := newFixture(t)
		form := builder.NewOrderFormBuilder(f.hostGroup.ID).WithLabel("nocoupons").WithoutCoupons().Build()
		f.reads.AddForm(form)
		f.reads.AddCoupon(&shared.CouponSnapshot{ID: uuid.New(), Code: "SPRING", Type: "percent", Value: decimalOf("10"), Active: true})

		err := f.cart.ApplyCoupon(ctx, sessionID, form.Label, "SPRING")

		assert.True(t, errs.Is(err, shared.ErrCouponsDisabled))
		assert.Empty(t, f.store.Get(sessionID).Coupon)
	})
}

func TestCartCommands_SetCurrency(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.cart.SetCurrency(ctx, sessionID, "eur"))
	assert.Equal(t, "EUR", f.store.Get(sessionID).Currency)

	err := f.cart.SetCurrency(ctx, sessionID, "XYZ")
	assert.True(t, errs.Is(err, shared.ErrCurrencyNotFound))
}
