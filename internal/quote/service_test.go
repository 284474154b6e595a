package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/discount"
	"github.com/noah-isme/pricing-api/internal/pricing"
)

type stubDiscounts struct {
	rule discount.Rule
	err  error
}

func (s stubDiscounts) Resolve(_ context.Context, _ string) (discount.Rule, error) {
	return s.rule, s.err
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newService(src DiscountSource) *Service {
	return &Service{
		Discounts:     src,
		TaxBps:        2000,
		FreeThreshold: 5000,
		Currency:      "GBP",
		Now:           fixedNow,
	}
}

func TestComputeWithoutDiscount(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	q, err := svc.Compute(context.Background(), Request{
		Items:        []pricing.Item{{Qty: 2, UnitPrice: 1999}, {Qty: 1, UnitPrice: 500}},
		ShippingRate: 499,
	})
	require.NoError(t, err)
	require.Equal(t, int64(4498), q.Breakdown.Subtotal)
	require.Equal(t, int64(499), q.Breakdown.Shipping)
	require.Equal(t, int64(999), q.Breakdown.Tax)
	require.Equal(t, int64(5996), q.Breakdown.Total)
	require.Equal(t, "GBP", q.Currency)
	require.Nil(t, q.Discount)
	require.Empty(t, q.DiscountRejection)
}

func TestComputeAppliesValidCode(t *testing.T) {
	t.Parallel()

	svc := newService(stubDiscounts{rule: discount.Rule{
		Code:       "SAVE10",
		Kind:       discount.KindPercentage,
		PercentBps: 1000,
		Active:     true,
	}})
	q, err := svc.Compute(context.Background(), Request{
		Items:        []pricing.Item{{Qty: 1, UnitPrice: 10000}},
		ShippingRate: 499,
		DiscountCode: "SAVE10",
	})
	require.NoError(t, err)
	require.NotNil(t, q.Discount)
	require.Equal(t, "SAVE10", q.Discount.Code)
	require.Equal(t, int64(1000), q.Discount.Amount)
	require.Equal(t, int64(1000), q.Breakdown.Discount)
	require.True(t, q.Breakdown.FreeShipping)
	require.Equal(t, int64(10800), q.Breakdown.Total)
	require.Empty(t, q.DiscountRejection)
}

func TestComputeSurfacesRejectionWithoutFailing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  DiscountSource
		want string
	}{
		{"unknown code", stubDiscounts{err: discount.ErrUnknownCode}, "UNKNOWN_CODE"},
		{"disabled", stubDiscounts{rule: discount.Rule{Code: "OFF", Kind: discount.KindFixed, Value: 500}}, "DISABLED"},
		{"minimum spend", stubDiscounts{rule: discount.Rule{
			Code: "BIG", Kind: discount.KindFixed, Value: 500, MinSpend: 100000, Active: true,
		}}, "MINIMUM_SPEND_UNMET"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newService(tc.src)
			q, err := svc.Compute(context.Background(), Request{
				Items:        []pricing.Item{{Qty: 1, UnitPrice: 4498}},
				ShippingRate: 499,
				DiscountCode: "ANY",
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, q.DiscountRejection)
			require.Nil(t, q.Discount)
			require.Equal(t, int64(0), q.Breakdown.Discount)
			require.Equal(t, int64(5996), q.Breakdown.Total)
		})
	}
}

func TestComputeExpiredCodeRejected(t *testing.T) {
	t.Parallel()

	past := fixedNow().Add(-time.Hour)
	svc := newService(stubDiscounts{rule: discount.Rule{
		Code:    "GONE",
		Kind:    discount.KindFixed,
		Value:   500,
		Active:  true,
		ValidTo: &past,
	}})
	q, err := svc.Compute(context.Background(), Request{
		Items:        []pricing.Item{{Qty: 1, UnitPrice: 2000}},
		ShippingRate: 499,
		DiscountCode: "GONE",
	})
	require.NoError(t, err)
	require.Equal(t, "EXPIRED", q.DiscountRejection)
}

func TestComputePropagatesUnexpectedResolveError(t *testing.T) {
	t.Parallel()

	boom := errors.New("redis down")
	svc := newService(stubDiscounts{err: boom})
	_, err := svc.Compute(context.Background(), Request{
		Items:        []pricing.Item{{Qty: 1, UnitPrice: 2000}},
		ShippingRate: 499,
		DiscountCode: "ANY",
	})
	require.ErrorIs(t, err, boom)
}

func TestComputeInvalidCartFails(t *testing.T) {
	t.Parallel()

	svc := newService(nil)
	_, err := svc.Compute(context.Background(), Request{ShippingRate: 499})
	require.ErrorIs(t, err, pricing.ErrInvalidInput)
}
