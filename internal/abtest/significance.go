// Package abtest estimates the statistical significance of an A/B email
// campaign test using a two-proportion z-test over conversion rates.
package abtest

import (
	"errors"
	"fmt"
	"math"
)

// MinSampleSize is the number of observations each variant needs before any
// confidence is reported.
const MinSampleSize = 100

// WinnerConfidence is the confidence level required to declare a winner.
const WinnerConfidence = 95

// ErrInvalidVariant is returned when variant counters are inconsistent.
var ErrInvalidVariant = errors.New("invalid variant stats")

// VariantStats carries the raw counters for one variant.
type VariantStats struct {
	Name      string `json:"name"`
	Sent      int64  `json:"sent"`
	Converted int64  `json:"converted"`
}

// Rate returns the conversion proportion, zero when nothing was sent.
func (v VariantStats) Rate() float64 {
	if v.Sent <= 0 {
		return 0
	}
	return float64(v.Converted) / float64(v.Sent)
}

// Result describes the outcome of a significance analysis. Winner is empty
// unless Confidence reaches WinnerConfidence.
type Result struct {
	Winner     string  `json:"winner,omitempty"`
	Confidence int     `json:"confidence"`
	ZScore     float64 `json:"zScore"`
	RateA      float64 `json:"rateA"`
	RateB      float64 `json:"rateB"`
}

// Analyze runs a two-proportion z-test on the variants. Below MinSampleSize
// the result always carries zero confidence and no winner, regardless of how
// far apart the conversion rates are.
func Analyze(a, b VariantStats) (Result, error) {
	for _, v := range []VariantStats{a, b} {
		if v.Sent < 0 || v.Converted < 0 {
			return Result{}, fmt.Errorf("%w: negative counter for %q", ErrInvalidVariant, v.Name)
		}
		if v.Converted > v.Sent {
			return Result{}, fmt.Errorf("%w: %q converted more than it sent", ErrInvalidVariant, v.Name)
		}
	}

	result := Result{RateA: a.Rate(), RateB: b.Rate()}
	if a.Sent < MinSampleSize || b.Sent < MinSampleSize {
		return result, nil
	}

	se := math.Sqrt(standardErrorSquared(a) + standardErrorSquared(b))
	diff := math.Abs(result.RateA - result.RateB)
	if se == 0 {
		// Degenerate proportions (all or nothing). Identical rates carry no
		// signal; distinct ones are treated as conclusive.
		if diff > 0 {
			result.ZScore = math.Inf(1)
			result.Confidence = 95
		}
	} else {
		result.ZScore = diff / se
		result.Confidence = confidenceLevel(result.ZScore)
	}

	if result.Confidence >= WinnerConfidence {
		if result.RateA > result.RateB {
			result.Winner = a.Name
		} else {
			result.Winner = b.Name
		}
	}
	return result, nil
}

func standardErrorSquared(v VariantStats) float64 {
	p := v.Rate()
	return p * (1 - p) / float64(v.Sent)
}

// confidenceLevel maps a z-score onto the discrete confidence buckets used by
// campaign reporting.
func confidenceLevel(z float64) int {
	switch {
	case z >= 1.96:
		return 95
	case z >= 1.645:
		return 90
	case z >= 1.28:
		return 80
	default:
		return 0
	}
}
