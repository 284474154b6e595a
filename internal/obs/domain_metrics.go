package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesComputedTotal counts quote computations by outcome.
	QuotesComputedTotal *prometheus.CounterVec
	// DiscountRejectionsTotal counts discount codes rejected during evaluation, by reason.
	DiscountRejectionsTotal *prometheus.CounterVec
	// SegmentEvaluationsTotal counts segmentation predicate evaluations by outcome.
	SegmentEvaluationsTotal *prometheus.CounterVec
	// ABAnalysesTotal counts A/B significance analyses by reported confidence level.
	ABAnalysesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_computed_total",
			Help:      "Count of quote computations by outcome.",
		}, []string{"result"})
		DiscountRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_rejections_total",
			Help:      "Count of rejected discount codes by reason.",
		}, []string{"reason"})
		SegmentEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_evaluations_total",
			Help:      "Count of segmentation evaluations by outcome.",
		}, []string{"matched"})
		ABAnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ab_analyses_total",
			Help:      "Count of A/B significance analyses by confidence level.",
		}, []string{"confidence"})

		mustRegisterCollector(reg, QuotesComputedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotesComputedTotal = v
			}
		})
		mustRegisterCollector(reg, DiscountRejectionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				DiscountRejectionsTotal = v
			}
		})
		mustRegisterCollector(reg, SegmentEvaluationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SegmentEvaluationsTotal = v
			}
		})
		mustRegisterCollector(reg, ABAnalysesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ABAnalysesTotal = v
			}
		})
	})
}

// ObserveQuote increments the quote counter when metrics are registered.
func ObserveQuote(result string) {
	if QuotesComputedTotal != nil {
		QuotesComputedTotal.WithLabelValues(result).Inc()
	}
}

// ObserveDiscountRejection increments the rejection counter for a reason code.
func ObserveDiscountRejection(reason string) {
	if DiscountRejectionsTotal != nil {
		DiscountRejectionsTotal.WithLabelValues(reason).Inc()
	}
}

// ObserveSegmentEvaluation increments the segmentation counter.
func ObserveSegmentEvaluation(matched bool) {
	if SegmentEvaluationsTotal != nil {
		label := "false"
		if matched {
			label = "true"
		}
		SegmentEvaluationsTotal.WithLabelValues(label).Inc()
	}
}

// ObserveABAnalysis increments the analysis counter for a confidence level.
func ObserveABAnalysis(confidence string) {
	if ABAnalysesTotal != nil {
		ABAnalysesTotal.WithLabelValues(confidence).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
