//go:build unit

package converter

import (
	"testing"
	"time"

	"storefront/internal/domain/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicesToInfra_LinksAddonsToParent(t *testing.T) {
	parentItem := uuid.New()
	o, err := order.New(order.NewParams{
		ClientID:    uuid.New(),
		OrderFormID: uuid.New(),
		Currency:    "USD",
		Status:      order.StatusAccepted,
		Now:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []order.Line{
			{ItemUUID: parentItem, PackageID: uuid.New(), PricingID: uuid.New(), Name: "Hosting", Qty: 3, UnitPrice: decimal.NewFromInt(10)},
			{ItemUUID: uuid.New(), ParentItemUUID: &parentItem, PackageID: uuid.New(), PricingID: uuid.New(), Name: "SSL", Qty: 1, UnitPrice: decimal.NewFromInt(5)},
			{ItemUUID: uuid.New(), PackageID: uuid.New(), PricingID: uuid.New(), Name: "example.com", Domain: "example.com", Qty: 1, UnitPrice: decimal.NewFromInt(12)},
		},
	})
	require.NoError(t, err)

	services := ServicesToInfra(o)
	lines := LinesToInfra(o)

	require.Len(t, services, 3)
	assert.False(t, services[0].ParentServiceID.Valid)
	assert.True(t, services[1].ParentServiceID.Valid)
	assert.Equal(t, services[0].ID, uuid.UUID(services[1].ParentServiceID.Bytes))
	assert.False(t, services[0].Domain.Valid)
	assert.Equal(t, "example.com", services[2].Domain.String)
	assert.Equal(t, 3, services[0].Qty, "a service carries the units of its line")
	assert.Equal(t, 1, services[1].Qty)

	require.Len(t, lines, 3)
	for i, l := range lines {
		assert.Equal(t, i, l.Position)
		assert.Equal(t, services[i].ID, l.ServiceID)
		assert.NotNil(t, l.Meta)
		assert.NotNil(t, l.Options)
	}
}
