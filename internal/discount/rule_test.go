package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRuleValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := int32(10)

	cases := []struct {
		name     string
		rule     Rule
		subtotal int64
		want     error
	}{
		{name: "ok", rule: Rule{Active: true, Kind: KindFixed, Value: 100}, subtotal: 1000},
		{name: "disabled", rule: Rule{Active: false}, subtotal: 1000, want: ErrDisabled},
		{name: "below min spend", rule: Rule{Active: true, MinSpend: 5000}, subtotal: 1000, want: ErrMinimumSpendUnmet},
		{name: "not yet active", rule: Rule{Active: true, ValidFrom: &future}, subtotal: 1000, want: ErrNotYetActive},
		{name: "expired", rule: Rule{Active: true, ValidTo: &past}, subtotal: 1000, want: ErrExpired},
		{name: "usage exhausted", rule: Rule{Active: true, UsageLimit: &limit, UsedCount: 10}, subtotal: 1000, want: ErrUsageLimitReached},
		{name: "usage remaining", rule: Rule{Active: true, UsageLimit: &limit, UsedCount: 9}, subtotal: 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate(now, tc.subtotal)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRuleAmountPercentage(t *testing.T) {
	t.Parallel()

	rule := Rule{Kind: KindPercentage, PercentBps: 1000}
	require.Equal(t, int64(1000), rule.Amount(10_000))
	require.Equal(t, int64(0), rule.Amount(0))

	// 10% of 4499p is 449.9p, rounded half-up.
	require.Equal(t, int64(450), rule.Amount(4499))
}

func TestRuleAmountFixedClamped(t *testing.T) {
	t.Parallel()

	rule := Rule{Kind: KindFixed, Value: 5000}
	require.Equal(t, int64(2000), rule.Amount(2000))
	require.Equal(t, int64(5000), rule.Amount(9000))
}

func TestRejectionCode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "MINIMUM_SPEND_UNMET", RejectionCode(ErrMinimumSpendUnmet))
	require.Equal(t, "UNKNOWN_CODE", RejectionCode(ErrUnknownCode))
	require.Equal(t, "", RejectionCode(nil))
}
