//go:build unit

package currency_test

import (
	"testing"

	"storefront/internal/domain/currency"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	d := decimal.RequireFromString
	usd, err := currency.New("usd", d("1"), 2)
	require.NoError(t, err)
	eur, err := currency.New("EUR", d("0.9"), 2)
	require.NoError(t, err)
	jpy, err := currency.New("JPY", d("150"), 0)
	require.NoError(t, err)

	tests := []struct {
		name     string
		amount   string
		from, to currency.Currency
		want     string
	}{
		{name: "same currency rounds only", amount: "10.005", from: usd, to: usd, want: "10.01"},
		{name: "usd to eur", amount: "100", from: usd, to: eur, want: "90"},
		{name: "eur to usd", amount: "90", from: eur, to: usd, want: "100"},
		{name: "eur to jpy", amount: "9", from: eur, to: jpy, want: "1500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := currency.Convert(d(tt.amount), tt.from, tt.to)
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}

	_, err = currency.New("XXX", decimal.Zero, 2)
	assert.ErrorIs(t, err, currency.ErrInvalidRate)
}
