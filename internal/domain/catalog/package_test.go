//go:build unit

package catalog_test

import (
	"testing"

	"storefront/internal/domain/catalog"
	"storefront/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackage(t *testing.T) {
	pricingID := uuid.New()
	pkg := catalog.Package{
		ID:     uuid.New(),
		Status: catalog.StatusActive,
		Pricings: []catalog.Pricing{
			{ID: pricingID, Term: 1, Period: catalog.PeriodMonth, Price: decimal.NewFromInt(10), Currency: "USD"},
		},
	}

	t.Run("stock", func(t *testing.T) {
		assert.False(t, pkg.SoldOut())
		p := pkg
		p.Qty = ptr.Of(0)
		assert.True(t, p.SoldOut())
		p.Qty = ptr.Of(3)
		assert.False(t, p.SoldOut())
	})

	t.Run("client limit", func(t *testing.T) {
		assert.False(t, pkg.ExceedsClientLimit(100, 1))
		p := pkg
		p.ClientQty = ptr.Of(2)
		assert.False(t, p.ExceedsClientLimit(1, 1))
		assert.True(t, p.ExceedsClientLimit(2, 1))
	})

	t.Run("status", func(t *testing.T) {
		p := pkg
		p.Status = catalog.StatusInactive
		assert.False(t, p.IsActive())
		p.Status = catalog.StatusRestricted
		assert.True(t, p.IsActive())
		assert.True(t, p.IsRestricted())
	})

	t.Run("pricing lookup", func(t *testing.T) {
		pr, err := pkg.PricingByID(pricingID)
		require.NoError(t, err)
		assert.Equal(t, "USD", pr.Currency)

		_, err = pkg.PricingByID(uuid.New())
		assert.ErrorIs(t, err, catalog.ErrUnknownPricing)
	})
}

func TestPricing_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pricing catalog.Pricing
		wantErr bool
	}{
		{name: "monthly", pricing: catalog.Pricing{Term: 1, Period: catalog.PeriodMonth}},
		{name: "onetime with zero term", pricing: catalog.Pricing{Term: 0, Period: catalog.PeriodOnetime}},
		{name: "onetime with term", pricing: catalog.Pricing{Term: 1, Period: catalog.PeriodOnetime}, wantErr: true},
		{name: "zero term", pricing: catalog.Pricing{Term: 0, Period: catalog.PeriodYear}, wantErr: true},
		{name: "unknown period", pricing: catalog.Pricing{Term: 1, Period: "fortnight"}, wantErr: true},
		{name: "negative price", pricing: catalog.Pricing{Term: 1, Period: catalog.PeriodMonth, Price: decimal.NewFromInt(-1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pricing.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, catalog.ErrInvalidTerm)
				return
			}
			assert.NoError(t, err)
		})
	}
}
