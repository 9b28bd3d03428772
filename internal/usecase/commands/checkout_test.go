//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/affiliate"
	"storefront/internal/domain/cart"
	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/shared"
	"storefront/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkoutCart seeds hosting (10.00) and a domain (12.00, affiliate
// excluded) for a 22.00 USD order.
func checkoutCart(f *fixture) *cart.State {
	return f.seedCart(f.item(f.hosting, ""), f.item(f.domain, "example.com"))
}

func (f *fixture) checkoutInput() commands.CheckoutInput {
	return commands.CheckoutInput{
		FormLabel:      f.form.Label,
		ClientID:       f.client.ID,
		IPAddress:      "203.0.113.7",
		IdempotencyKey: uuid.New(),
	}
}

// =============================================================================
// Happy path
// =============================================================================

func TestCheckoutCommands_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("success: order, invoice and event are stored and the cart is emptied", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		in := f.checkoutInput()

		res, err := f.checkout.CreateOrder(ctx, sessionID, in)

		require.NoError(t, err)
		assert.False(t, res.IsReplayed)
		assert.Equal(t, order.StatusAccepted.String(), res.Status)
		assert.Equal(t, "USD", res.Currency)
		assert.True(t, decimalOf("22").Equal(res.Total), "total was %s", res.Total)
		assert.False(t, res.Complete)
		require.NotNil(t, res.Payment)
		assert.True(t, decimalOf("22").Equal(res.Payment.Amount))

		require.Len(t, f.uow.Orders, 1)
		o := f.uow.Orders[0]
		assert.Equal(t, res.OrderID, o.ID())
		require.Len(t, o.Lines(), 2)
		assert.Equal(t, "example.com", o.Lines()[1].Name)
		require.Len(t, f.uow.Invoices, 1)
		assert.Equal(t, order.InvoiceUnpaid, f.uow.Invoices[0].Status)

		require.Len(t, f.uow.Jobs, 1)
		job := f.uow.Jobs[0]
		assert.Equal(t, order.EventOrderCreated, job.Kind)
		assert.Equal(t, "storefront.orders", job.Topic)
		var event map[string]any
		require.NoError(t, json.Unmarshal(job.Payload, &event))
		assert.Equal(t, o.ID().String(), event["aggregate_id"])

		st := f.store.Get(sessionID)
		assert.True(t, st.IsEmptyCart())

		rec := f.reads.Keys[[2]uuid.UUID{in.IdempotencyKey, in.ClientID}]
		require.NotNil(t, rec)
		assert.Equal(t, shared.IdempotencyCompleted, rec.Status)
		assert.Equal(t, o.ID(), *rec.ResultOrderID)
	})

	t.Run("success: prices follow the session currency", func(t *testing.T) {
		f := newFixture(t)
		st := checkoutCart(f)
		st.Currency = "EUR"
		f.store.Put(sessionID, st)

		res, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		require.NoError(t, err)
		assert.Equal(t, "EUR", res.Currency)
		assert.True(t, decimalOf("11").Equal(res.Total), "total was %s", res.Total)
	})

	t.Run("success: zero total pays the invoice and completes the order", func(t *testing.T) {
		f := newFixture(t)
		couponID := uuid.New()
		f.reads.AddCoupon(&shared.CouponSnapshot{ID: couponID, Code: "FREE", Type: "percent", Value: decimalOf("100"), Active: true})
		st := checkoutCart(f)
		st.Coupon = "FREE"
		f.store.Put(sessionID, st)

		res, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		require.NoError(t, err)
		assert.True(t, res.Complete)
		assert.Nil(t, res.Payment)
		assert.Equal(t, order.StatusComplete.String(), res.Status)
		assert.Equal(t, order.InvoicePaid, f.uow.Invoices[0].Status)
		assert.Equal(t, 1, f.uow.Usage[couponID])
	})

	t.Run("success: held order stays pending even at zero total", func(t *testing.T) {
		f := newFixture(t)
		f.client.EmailVerified = false
		f.reads.AddCoupon(&shared.CouponSnapshot{ID: uuid.New(), Code: "FREE", Type: "percent", Value: decimalOf("100"), Active: true})
		st := checkoutCart(f)
		st.Coupon = "FREE"
		f.store.Put(sessionID, st)

		res, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		require.NoError(t, err)
		assert.Equal(t, order.StatusPending.String(), res.Status)
		assert.False(t, res.Complete)
		assert.Equal(t, order.InvoicePaid, f.uow.Invoices[0].Status)
	})

	t.Run("success: stock and held units follow the ordered qty", func(t *testing.T) {
		f := newFixture(t)
		stock := 5
		f.simple.Qty = &stock
		item := f.item(f.simple, "")
		item.Qty = 2
		f.seedCart(item, f.item(f.simple, ""))

		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		require.NoError(t, err)
		assert.Equal(t, 3, f.uow.Stock[f.simple.ID])
		assert.Equal(t, 2, *f.simple.Qty)
		held, err := f.reads.CountClientServices(ctx, f.client.ID, f.simple.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, held)
	})

	t.Run("error: the per-client limit counts units already ordered", func(t *testing.T) {
		f := newFixture(t)
		limit := 2
		f.simple.ClientQty = &limit
		item := f.item(f.simple, "")
		item.Qty = 2
		f.seedCart(item)
		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())
		require.NoError(t, err)

		f.seedCart(f.item(f.simple, ""))
		_, err = f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		verr, ok := errs.AsValidation(err)
		require.True(t, ok, "got %v", err)
		assert.Contains(t, verr.Fields, "items.0.qty")
		assert.Len(t, f.uow.Orders, 1)
	})

	t.Run("error: lines that together outrun the stock", func(t *testing.T) {
		f := newFixture(t)
		stock := 2
		f.simple.Qty = &stock
		first, second := f.item(f.simple, ""), f.item(f.simple, "")
		first.Qty, second.Qty = 2, 2
		f.seedCart(first, second)
		in := f.checkoutInput()

		_, err := f.checkout.CreateOrder(ctx, sessionID, in)

		verr, ok := errs.AsValidation(err)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, []string{commands.ErrSoldOut.Error()}, verr.Fields["items.0.pricing_id"])
		assert.Empty(t, f.uow.Orders)
		assert.Equal(t, 2, *f.simple.Qty)
		_, claimed := f.reads.Keys[[2]uuid.UUID{in.IdempotencyKey, in.ClientID}]
		assert.False(t, claimed)
	})
}

// =============================================================================
// One order per cart
// =============================================================================

func TestCheckoutCommands_OneOrderPerCart(t *testing.T) {
	ctx := context.Background()
	emptyingFails := func(st *cart.State) error {
		if st.IsEmptyCart() {
			return errors.New("redis: connection refused")
		}
		return nil
	}

	t.Run("success: a cart left behind by a committed order replays that order", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		f.store.RejectSave = emptyingFails

		first, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())
		require.NoError(t, err, "the order stands when the cart cannot be emptied")
		require.False(t, f.store.Get(sessionID).IsEmptyCart())

		f.store.RejectSave = nil
		second, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		require.NoError(t, err)
		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.OrderID, second.OrderID)
		assert.Len(t, f.uow.Orders, 1)
		assert.True(t, f.store.Get(sessionID).IsEmptyCart(), "the stale cart is emptied on the way")
	})

	t.Run("error: a concurrent checkout of the same cart", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		// another request saved the session after this one loaded it
		f.store.ConflictsLeft = 1
		in := f.checkoutInput()

		_, err := f.checkout.CreateOrder(ctx, sessionID, in)

		assert.True(t, errs.Is(err, shared.ErrCartConflict), "got %v", err)
		assert.Empty(t, f.uow.Orders)
		_, held := f.reads.Keys[[2]uuid.UUID{in.IdempotencyKey, in.ClientID}]
		assert.False(t, held, "key released for a retry")
	})

	t.Run("error: the cart is still being ordered under another key", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		blocked := f.checkoutInput()
		f.uow.FailOn["orders.create"] = errors.New("deadlock")
		_, err := f.checkout.CreateOrder(ctx, sessionID, blocked)
		require.Error(t, err)
		// the first attempt is still in flight
		f.reads.Keys[[2]uuid.UUID{blocked.IdempotencyKey, blocked.ClientID}] = &shared.IdempotencyRecord{
			Key: blocked.IdempotencyKey, ClientID: blocked.ClientID,
			Status: shared.IdempotencyProcessing, ExpiresAt: time.Now().Add(time.Hour),
		}
		delete(f.uow.FailOn, "orders.create")

		_, err = f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		assert.True(t, errs.Is(err, commands.ErrIdempotencyInProgress), "got %v", err)
		assert.Empty(t, f.uow.Orders)
	})

	t.Run("success: a failed attempt does not block the next key", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		f.uow.FailOn["orders.create"] = errors.New("deadlock")
		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())
		require.Error(t, err)
		delete(f.uow.FailOn, "orders.create")

		res, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		require.NoError(t, err)
		assert.False(t, res.IsReplayed)
		assert.Len(t, f.uow.Orders, 1)
	})
}

// =============================================================================
// Hold policy and fraud screening
// =============================================================================

func TestCheckoutCommands_HoldPolicy(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		setup       func(f *fixture)
		wantStatus  order.Status
		wantFraud   order.FraudStatus
		wantErr     error
		wantNoOrder bool
	}{
		{
			name:       "verified client is accepted",
			setup:      func(f *fixture) {},
			wantStatus: order.StatusAccepted,
			wantFraud:  order.FraudAllow,
		},
		{
			name:       "unverified client is held",
			setup:      func(f *fixture) { f.client.EmailVerified = false },
			wantStatus: order.StatusPending,
			wantFraud:  order.FraudAllow,
		},
		{
			name: "manual review form holds every order",
			setup: func(f *fixture) {
				f.form = builder.NewOrderFormBuilder(f.hostGroup.ID, f.domainGroup.ID).WithManualReview().Build()
				f.reads.AddForm(f.form)
			},
			wantStatus: order.StatusPending,
			wantFraud:  order.FraudAllow,
		},
		{
			name: "total over the review threshold is held",
			setup: func(f *fixture) {
				f.settings.ReviewThreshold = decimalOf("20")
				f.rebuild()
			},
			wantStatus: order.StatusPending,
			wantFraud:  order.FraudReview,
		},
		{
			name: "session flagged for review stays under review",
			setup: func(f *fixture) {
				st := f.store.Get(sessionID)
				st.FraudStatus = string(order.FraudReview)
				f.store.Put(sessionID, st)
			},
			wantStatus: order.StatusPending,
			wantFraud:  order.FraudReview,
		},
		{
			name: "session rejected earlier is refused",
			setup: func(f *fixture) {
				st := f.store.Get(sessionID)
				st.FraudStatus = string(order.FraudReject)
				f.store.Put(sessionID, st)
			},
			wantErr:     commands.ErrFraudRejected,
			wantNoOrder: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			checkoutCart(f)
			tc.setup(f)

			res, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

			if tc.wantErr != nil {
				assert.True(t, errs.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
				if tc.wantNoOrder {
					assert.Empty(t, f.uow.Orders)
					assert.False(t, f.store.Get(sessionID).IsEmptyCart())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus.String(), res.Status)
			require.Len(t, f.uow.Orders, 1)
			assert.Equal(t, tc.wantFraud, f.uow.Orders[0].Fraud().Status)
		})
	}
}

// =============================================================================
// Guards and failures
// =============================================================================

func TestCheckoutCommands_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("error: empty cart", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		assert.True(t, errs.Is(err, commands.ErrEmptyCart))
		assert.Empty(t, f.uow.Orders)
	})

	t.Run("error: entries still waiting for configuration", func(t *testing.T) {
		f := newFixture(t)
		st := checkoutCart(f)
		st.Enqueue(f.item(f.simple, ""))
		f.store.Put(sessionID, st)

		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		assert.True(t, errs.Is(err, commands.ErrPendingConfiguration))
	})

	t.Run("error: missing idempotency key", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		in := f.checkoutInput()
		in.IdempotencyKey = uuid.Nil

		_, err := f.checkout.CreateOrder(ctx, sessionID, in)

		assert.True(t, errs.Is(err, commands.ErrIdempotencyKeyRequired))
	})

	t.Run("error: unknown client", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		in := f.checkoutInput()
		in.ClientID = uuid.New()

		_, err := f.checkout.CreateOrder(ctx, sessionID, in)

		assert.True(t, errs.Is(err, commands.ErrClientNotFound))
		assert.Empty(t, f.reads.Keys, "failed attempts release their key")
	})

	t.Run("error: item sold out since it was added", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		soldOut := *f.hosting
		zero := 0
		soldOut.Qty = &zero
		f.reads.AddPackage(&soldOut)

		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		verr, ok := errs.AsValidation(err)
		require.True(t, ok, "got %v", err)
		assert.Contains(t, verr.Fields, "items.0.pricing_id")
		assert.Empty(t, f.uow.Orders)
		assert.Empty(t, f.reads.Keys)
		assert.Len(t, f.store.Get(sessionID).Items, 2)
	})

	t.Run("error: coupon no longer valid", func(t *testing.T) {
		f := newFixture(t)
		st := checkoutCart(f)
		st.Coupon = "GONE"
		f.store.Put(sessionID, st)

		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		verr, ok := errs.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "coupon")
	})

	t.Run("error: coupon used up while the order was written", func(t *testing.T) {
		f := newFixture(t)
		f.reads.AddCoupon(&shared.CouponSnapshot{ID: uuid.New(), Code: "LAST", Type: "amount", Value: decimalOf("2"), Currency: "USD", MaxQty: 1, Active: true})
		st := checkoutCart(f)
		st.Coupon = "LAST"
		f.store.Put(sessionID, st)
		f.uow.FailOn["coupons.increment"] = infra.RepositoryError{Kind: infra.KindConflict}

		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		verr, ok := errs.AsValidation(err)
		require.True(t, ok, "got %v", err)
		assert.Contains(t, verr.Fields, "coupon")
		assert.Empty(t, f.uow.Orders, "the transaction must roll back")
	})

	t.Run("error: database failure keeps the cart and frees the key", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		f.uow.FailOn["orders.create"] = errors.New("connection reset")

		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		assert.True(t, errs.Is(err, commands.ErrDatabaseOperationFailed))
		assert.Empty(t, f.uow.Orders)
		assert.Empty(t, f.uow.Jobs)
		assert.Empty(t, f.reads.Keys)
		assert.Len(t, f.store.Get(sessionID).Items, 2)
	})
}

// =============================================================================
// Idempotency
// =============================================================================

func TestCheckoutCommands_Idempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("success: retry with the same key replays the order", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		in := f.checkoutInput()

		first, err := f.checkout.CreateOrder(ctx, sessionID, in)
		require.NoError(t, err)
		second, err := f.checkout.CreateOrder(ctx, sessionID, in)
		require.NoError(t, err)

		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.OrderID, second.OrderID)
		assert.Equal(t, first.Status, second.Status)
		require.NotNil(t, second.Payment)
		assert.Len(t, f.uow.Orders, 1)
	})

	t.Run("error: key still processing for a different cart", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		in := f.checkoutInput()
		f.reads.Keys[[2]uuid.UUID{in.IdempotencyKey, in.ClientID}] = &shared.IdempotencyRecord{
			Key:         in.IdempotencyKey,
			ClientID:    in.ClientID,
			Status:      shared.IdempotencyProcessing,
			RequestHash: "some-other-cart",
			ExpiresAt:   f.clock.Now().Add(time.Hour),
		}

		_, err := f.checkout.CreateOrder(ctx, sessionID, in)

		assert.True(t, errs.Is(err, commands.ErrDuplicateOrderRequest))
		assert.Empty(t, f.uow.Orders)
	})

	t.Run("error: key lookup failure", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		f.uow.FailOn["idempotency.insert"] = errors.New("timeout")

		_, err := f.checkout.CreateOrder(ctx, sessionID, f.checkoutInput())

		assert.True(t, errs.Is(err, commands.ErrIdempotencyCheckFailed))
	})
}

// =============================================================================
// Affiliate referrals
// =============================================================================

func TestCheckoutCommands_Referral(t *testing.T) {
	ctx := context.Background()

	percentage := affiliate.Settings{
		affiliate.KeyCommissionType:   string(affiliate.CommissionPercentage),
		affiliate.KeyCommissionAmount: "10",
		affiliate.KeyOrderFrequency:   string(affiliate.FrequencyAny),
	}
	firstOnly := affiliate.Settings{
		affiliate.KeyCommissionType:   string(affiliate.CommissionPercentage),
		affiliate.KeyCommissionAmount: "10",
		affiliate.KeyOrderFrequency:   string(affiliate.FrequencyFirst),
	}

	testCases := []struct {
		name           string
		code           string
		owner          func(f *fixture) uuid.UUID
		settings       affiliate.Settings
		priorOrders    int
		wantReferral   bool
		wantCommission string
	}{
		{
			name:           "commission excludes affiliate-excluded packages",
			code:           " Partner ",
			owner:          func(*fixture) uuid.UUID { return uuid.New() },
			settings:       percentage,
			wantReferral:   true,
			wantCommission: "1",
		},
		{
			name:     "own code earns nothing",
			code:     "partner",
			owner:    func(f *fixture) uuid.UUID { return f.client.ID },
			settings: percentage,
		},
		{
			name:        "first-order affiliates skip returning clients",
			code:        "partner",
			owner:       func(*fixture) uuid.UUID { return uuid.New() },
			settings:    firstOnly,
			priorOrders: 2,
		},
		{
			name:           "first-order affiliates credit a first order",
			code:           "partner",
			owner:          func(*fixture) uuid.UUID { return uuid.New() },
			settings:       firstOnly,
			wantReferral:   true,
			wantCommission: "1",
		},
		{
			name:  "amount commission is flat",
			code:  "partner",
			owner: func(*fixture) uuid.UUID { return uuid.New() },
			settings: affiliate.Settings{
				affiliate.KeyCommissionType:   string(affiliate.CommissionFlatAmount),
				affiliate.KeyCommissionAmount: "4",
			},
			wantReferral:   true,
			wantCommission: "4",
		},
		{
			name:  "unknown commission type records nothing",
			code:  "partner",
			owner: func(*fixture) uuid.UUID { return uuid.New() },
			settings: affiliate.Settings{
				affiliate.KeyCommissionType:   "bonus",
				affiliate.KeyCommissionAmount: "4",
			},
		},
		{
			name:     "unknown code is ignored",
			code:     "nobody",
			owner:    func(*fixture) uuid.UUID { return uuid.New() },
			settings: percentage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			checkoutCart(f)
			f.reads.AddAffiliate(&affiliate.Affiliate{ID: uuid.New(), ClientID: tc.owner(f), Code: "partner", Status: affiliate.StatusActive}, tc.settings)
			f.reads.OrderCounts[f.client.ID] = tc.priorOrders
			in := f.checkoutInput()
			in.AffiliateCode = tc.code

			res, err := f.checkout.CreateOrder(ctx, sessionID, in)

			require.NoError(t, err, "referral problems never fail checkout")
			if !tc.wantReferral {
				assert.Empty(t, f.uow.Referrals)
				return
			}
			require.Len(t, f.uow.Referrals, 1)
			ref := f.uow.Referrals[0]
			assert.Equal(t, res.OrderID, ref.OrderID)
			assert.True(t, decimalOf(tc.wantCommission).Equal(ref.Commission), "commission was %s", ref.Commission)
			assert.True(t, decimalOf("10").Equal(ref.Amount), "commissionable was %s", ref.Amount)
		})
	}

	t.Run("referral write failure is swallowed", func(t *testing.T) {
		f := newFixture(t)
		checkoutCart(f)
		f.reads.AddAffiliate(&affiliate.Affiliate{ID: uuid.New(), ClientID: uuid.New(), Code: "partner", Status: affiliate.StatusActive}, percentage)
		f.uow.FailOn["referrals.create"] = errors.New("deadlock")
		in := f.checkoutInput()
		in.AffiliateCode = "partner"

		_, err := f.checkout.CreateOrder(ctx, sessionID, in)

		require.NoError(t, err)
		assert.Len(t, f.uow.Orders, 1)
		assert.Empty(t, f.uow.Referrals)
	})
}
