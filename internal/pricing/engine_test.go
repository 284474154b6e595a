package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/pricing"
)

var (
	ukShipping = pricing.ShippingPolicy{BaseRate: 499, FreeThreshold: 5000}
	ukVAT      = pricing.TaxPolicy{RateBps: 2000}
)

func TestComputeStandardCart(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{
		{Qty: 1, UnitPrice: 2499},
		{Qty: 1, UnitPrice: 1999},
	}
	got, err := pricing.Compute(items, ukShipping, ukVAT, nil)
	require.NoError(t, err)
	require.Equal(t, pricing.Breakdown{
		Subtotal:     4498,
		Discount:     0,
		Shipping:     499,
		Tax:          999,
		Total:        5996,
		FreeShipping: false,
	}, got)
}

func TestComputeFreeShippingUnlocked(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{
		{Qty: 1, UnitPrice: 2499},
		{Qty: 1, UnitPrice: 1999},
		{Qty: 1, UnitPrice: 1502},
	}
	got, err := pricing.Compute(items, ukShipping, ukVAT, nil)
	require.NoError(t, err)
	require.True(t, got.FreeShipping)
	require.Equal(t, pricing.Money(6000), got.Subtotal)
	require.Equal(t, pricing.Money(0), got.Shipping)
	require.Equal(t, pricing.Money(1200), got.Tax)
	require.Equal(t, pricing.Money(7200), got.Total)
}

func TestComputePercentageDiscount(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{{Qty: 4, UnitPrice: 2500}}
	discount := &pricing.Discount{Code: "SAVE10", Kind: pricing.KindPercentage, PercentBps: 1000}
	got, err := pricing.Compute(items, ukShipping, ukVAT, discount)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(10000), got.Subtotal)
	require.Equal(t, pricing.Money(1000), got.Discount)
	require.True(t, got.FreeShipping)
	require.Equal(t, pricing.Money(1800), got.Tax)
	require.Equal(t, pricing.Money(10800), got.Total)
}

func TestComputeFixedDiscountClampedToSubtotal(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{{Qty: 1, UnitPrice: 1000}}
	discount := &pricing.Discount{Code: "BIG", Kind: pricing.KindFixed, Value: 5000}
	got, err := pricing.Compute(items, ukShipping, ukVAT, discount)
	require.NoError(t, err)
	require.Equal(t, pricing.Money(1000), got.Discount)
	// Only shipping and its VAT remain chargeable.
	require.Equal(t, pricing.Money(499), got.Shipping)
	require.Equal(t, pricing.Money(100), got.Tax)
	require.Equal(t, pricing.Money(599), got.Total)
}

func TestComputeZeroPercentEqualsNoDiscount(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{{Qty: 2, UnitPrice: 1234}}
	plain, err := pricing.Compute(items, ukShipping, ukVAT, nil)
	require.NoError(t, err)
	zero, err := pricing.Compute(items, ukShipping, ukVAT, &pricing.Discount{Kind: pricing.KindPercentage, PercentBps: 0})
	require.NoError(t, err)
	require.Equal(t, plain, zero)
}

func TestComputeMinimumChargeableFloor(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{{Qty: 1, UnitPrice: 10}}
	discount := &pricing.Discount{Kind: pricing.KindFixed, Value: 10}
	got, err := pricing.Compute(items, pricing.ShippingPolicy{BaseRate: 0, FreeThreshold: 0}, ukVAT, discount)
	require.NoError(t, err)
	require.Equal(t, pricing.MinimumChargeable, got.Total)
}

func TestComputeFreeShippingIgnoresDiscount(t *testing.T) {
	t.Parallel()

	// Discount drops the payable amount below the threshold but eligibility
	// is evaluated on the pre-discount subtotal.
	items := []pricing.Item{{Qty: 1, UnitPrice: 5200}}
	discount := &pricing.Discount{Kind: pricing.KindFixed, Value: 3000}
	got, err := pricing.Compute(items, ukShipping, ukVAT, discount)
	require.NoError(t, err)
	require.True(t, got.FreeShipping)
	require.Equal(t, pricing.Money(0), got.Shipping)
}

func TestComputeDeterministic(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{{Qty: 3, UnitPrice: 1999}, {Qty: 1, UnitPrice: 4950}}
	discount := &pricing.Discount{Kind: pricing.KindPercentage, PercentBps: 1550}
	first, err := pricing.Compute(items, ukShipping, ukVAT, discount)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := pricing.Compute(items, ukShipping, ukVAT, discount)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	require.Equal(t, first.Subtotal-first.Discount+first.Shipping+first.Tax, first.Total)
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		items    []pricing.Item
		ship     pricing.ShippingPolicy
		tax      pricing.TaxPolicy
		discount *pricing.Discount
	}{
		{name: "empty cart", items: nil, ship: ukShipping, tax: ukVAT},
		{name: "zero qty", items: []pricing.Item{{Qty: 0, UnitPrice: 100}}, ship: ukShipping, tax: ukVAT},
		{name: "negative price", items: []pricing.Item{{Qty: 1, UnitPrice: -1}}, ship: ukShipping, tax: ukVAT},
		{name: "negative shipping", items: []pricing.Item{{Qty: 1, UnitPrice: 100}}, ship: pricing.ShippingPolicy{BaseRate: -1}, tax: ukVAT},
		{name: "negative threshold", items: []pricing.Item{{Qty: 1, UnitPrice: 100}}, ship: pricing.ShippingPolicy{FreeThreshold: -1}, tax: ukVAT},
		{name: "negative tax", items: []pricing.Item{{Qty: 1, UnitPrice: 100}}, ship: ukShipping, tax: pricing.TaxPolicy{RateBps: -1}},
		{
			name: "percent above 100", items: []pricing.Item{{Qty: 1, UnitPrice: 100}}, ship: ukShipping, tax: ukVAT,
			discount: &pricing.Discount{Kind: pricing.KindPercentage, PercentBps: 10001},
		},
		{
			name: "negative fixed discount", items: []pricing.Item{{Qty: 1, UnitPrice: 100}}, ship: ukShipping, tax: ukVAT,
			discount: &pricing.Discount{Kind: pricing.KindFixed, Value: -5},
		},
		{
			name: "unknown kind", items: []pricing.Item{{Qty: 1, UnitPrice: 100}}, ship: ukShipping, tax: ukVAT,
			discount: &pricing.Discount{Kind: "bogo"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pricing.Compute(tc.items, tc.ship, tc.tax, tc.discount)
			require.ErrorIs(t, err, pricing.ErrInvalidInput)
		})
	}
}

func TestSubtotal(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{{Qty: 2, UnitPrice: 150}, {Qty: 1, UnitPrice: 99}}
	require.Equal(t, pricing.Money(399), pricing.Subtotal(items))
}
