//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"storefront/internal/domain/coupon"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func params() coupon.Params {
	from := now.Add(-24 * time.Hour)
	to := now.Add(24 * time.Hour)
	return coupon.Params{
		ID:        uuid.New(),
		Code:      " save10 ",
		Type:      coupon.DiscountPercent,
		Value:     decimal.NewFromInt(10),
		Active:    true,
		ValidFrom: &from,
		ValidTo:   &to,
	}
}

func TestNewCoupon(t *testing.T) {
	c, err := coupon.NewCoupon(params())
	require.NoError(t, err)
	assert.Equal(t, coupon.Code("SAVE10"), c.Code())

	t.Run("invalid inputs", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*coupon.Params)
			errIs  error
		}{
			{name: "short code", mutate: func(p *coupon.Params) { p.Code = "AB" }, errIs: coupon.ErrInvalidCouponCode},
			{name: "percent over 100", mutate: func(p *coupon.Params) { p.Value = decimal.NewFromInt(101) }, errIs: coupon.ErrInvalidDiscountPercent},
			{name: "negative amount", mutate: func(p *coupon.Params) {
				p.Type = coupon.DiscountAmount
				p.Value = decimal.NewFromInt(-5)
			}, errIs: coupon.ErrInvalidDiscountAmount},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := params()
				tt.mutate(&p)
				_, err := coupon.NewCoupon(p)
				assert.ErrorIs(t, err, tt.errIs)
			})
		}
	})
}

func TestCoupon_ValidateUsage(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*coupon.Params)
		at     time.Time
		errIs  error
	}{
		{name: "valid", at: now},
		{name: "inactive", mutate: func(p *coupon.Params) { p.Active = false }, at: now, errIs: coupon.ErrCouponInactive},
		{name: "not yet valid", at: now.Add(-48 * time.Hour), errIs: coupon.ErrCouponNotYetValid},
		{name: "expired", at: now.Add(48 * time.Hour), errIs: coupon.ErrCouponExpired},
		{name: "exhausted", mutate: func(p *coupon.Params) { p.MaxQty, p.UsedQty = 5, 5 }, at: now, errIs: coupon.ErrCouponExhausted},
		{name: "unlimited", mutate: func(p *coupon.Params) { p.MaxQty, p.UsedQty = 0, 500 }, at: now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params()
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			c, err := coupon.NewCoupon(p)
			require.NoError(t, err)

			err = c.ValidateUsage(tt.at)
			if tt.errIs == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.errIs)
		})
	}
}

func TestCoupon_ApplyDiscount(t *testing.T) {
	d := decimal.RequireFromString

	pct, err := coupon.NewCoupon(params())
	require.NoError(t, err)
	assert.True(t, d("180").Equal(pct.ApplyDiscount(d("200"), decimal.Zero)))

	p := params()
	p.Type, p.Value, p.Currency = coupon.DiscountAmount, d("50"), "usd"
	fixed, err := coupon.NewCoupon(p)
	require.NoError(t, err)
	assert.Equal(t, "USD", fixed.Discount().Currency())

	assert.True(t, d("150").Equal(fixed.ApplyDiscount(d("200"), d("50"))))
	assert.True(t, decimal.Zero.Equal(fixed.ApplyDiscount(d("30"), d("50"))), "never below zero")
	assert.True(t, decimal.Zero.Equal(fixed.ApplyDiscount(decimal.Zero, d("50"))))
}
