package abtest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/abtest"
)

func TestAnalyzeClearWinner(t *testing.T) {
	t.Parallel()

	a := abtest.VariantStats{Name: "A", Sent: 100, Converted: 5}
	b := abtest.VariantStats{Name: "B", Sent: 100, Converted: 25}
	result, err := abtest.Analyze(a, b)
	require.NoError(t, err)
	require.Equal(t, 95, result.Confidence)
	require.Equal(t, "B", result.Winner)
	require.Greater(t, result.ZScore, 1.96)
	require.InDelta(t, 0.05, result.RateA, 1e-9)
	require.InDelta(t, 0.25, result.RateB, 1e-9)
}

func TestAnalyzeBelowMinimumSample(t *testing.T) {
	t.Parallel()

	// Huge disparity but too few observations to trust it.
	a := abtest.VariantStats{Name: "A", Sent: 99, Converted: 1}
	b := abtest.VariantStats{Name: "B", Sent: 99, Converted: 90}
	result, err := abtest.Analyze(a, b)
	require.NoError(t, err)
	require.Equal(t, 0, result.Confidence)
	require.Empty(t, result.Winner)
}

func TestAnalyzeNoSignal(t *testing.T) {
	t.Parallel()

	a := abtest.VariantStats{Name: "A", Sent: 500, Converted: 50}
	b := abtest.VariantStats{Name: "B", Sent: 500, Converted: 52}
	result, err := abtest.Analyze(a, b)
	require.NoError(t, err)
	require.Equal(t, 0, result.Confidence)
	require.Empty(t, result.Winner)
}

func TestAnalyzeModerateConfidenceHasNoWinner(t *testing.T) {
	t.Parallel()

	// Around z=1.7: significant at 90% but below the 95% winner bar.
	a := abtest.VariantStats{Name: "A", Sent: 1000, Converted: 100}
	b := abtest.VariantStats{Name: "B", Sent: 1000, Converted: 124}
	result, err := abtest.Analyze(a, b)
	require.NoError(t, err)
	require.Equal(t, 90, result.Confidence)
	require.Empty(t, result.Winner)
}

func TestAnalyzeHigherRateWins(t *testing.T) {
	t.Parallel()

	a := abtest.VariantStats{Name: "A", Sent: 100, Converted: 25}
	b := abtest.VariantStats{Name: "B", Sent: 100, Converted: 5}
	result, err := abtest.Analyze(a, b)
	require.NoError(t, err)
	require.Equal(t, "A", result.Winner)
}

func TestAnalyzeDegenerateProportions(t *testing.T) {
	t.Parallel()

	a := abtest.VariantStats{Name: "A", Sent: 200, Converted: 0}
	b := abtest.VariantStats{Name: "B", Sent: 200, Converted: 200}
	result, err := abtest.Analyze(a, b)
	require.NoError(t, err)
	require.Equal(t, 95, result.Confidence)
	require.Equal(t, "B", result.Winner)

	same, err := abtest.Analyze(
		abtest.VariantStats{Name: "A", Sent: 200, Converted: 0},
		abtest.VariantStats{Name: "B", Sent: 200, Converted: 0},
	)
	require.NoError(t, err)
	require.Equal(t, 0, same.Confidence)
	require.Empty(t, same.Winner)
}

func TestAnalyzeRejectsInconsistentCounters(t *testing.T) {
	t.Parallel()

	_, err := abtest.Analyze(
		abtest.VariantStats{Name: "A", Sent: 100, Converted: 101},
		abtest.VariantStats{Name: "B", Sent: 100, Converted: 5},
	)
	require.ErrorIs(t, err, abtest.ErrInvalidVariant)

	_, err = abtest.Analyze(
		abtest.VariantStats{Name: "A", Sent: -1, Converted: 0},
		abtest.VariantStats{Name: "B", Sent: 100, Converted: 5},
	)
	require.ErrorIs(t, err, abtest.ErrInvalidVariant)
}
