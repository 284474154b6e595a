// Package segment evaluates customer segmentation criteria against known
// customer facts. Criteria are conjunctions of independent field comparisons;
// an absent criterion is vacuously satisfied.
package segment

import (
	"slices"
	"time"
)

// Criteria describes the bounds a customer must satisfy to belong to a segment.
// Every field is optional; nil means the condition is not part of the segment.
type Criteria struct {
	MinTotalSpend   *int64     `json:"minTotalSpend,omitempty"`
	MaxTotalSpend   *int64     `json:"maxTotalSpend,omitempty"`
	MinOrderCount   *int       `json:"minOrderCount,omitempty"`
	MaxOrderCount   *int       `json:"maxOrderCount,omitempty"`
	CreatedAfter    *time.Time `json:"createdAfter,omitempty"`
	CreatedBefore   *time.Time `json:"createdBefore,omitempty"`
	LastOrderAfter  *time.Time `json:"lastOrderAfter,omitempty"`
	LastOrderBefore *time.Time `json:"lastOrderBefore,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
}

// Facts carries the customer attributes segmentation reads. TotalSpend is in
// minor units. LastOrderAt is nil for customers who never ordered.
type Facts struct {
	TotalSpend  int64      `json:"totalSpend"`
	OrderCount  int        `json:"orderCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastOrderAt *time.Time `json:"lastOrderAt,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// Matches reports whether the facts satisfy every present criterion. All
// conditions are evaluated; none has ordering significance.
func (c Criteria) Matches(f Facts) bool {
	checks := []bool{
		c.MinTotalSpend == nil || f.TotalSpend >= *c.MinTotalSpend,
		c.MaxTotalSpend == nil || f.TotalSpend <= *c.MaxTotalSpend,
		c.MinOrderCount == nil || f.OrderCount >= *c.MinOrderCount,
		c.MaxOrderCount == nil || f.OrderCount <= *c.MaxOrderCount,
		c.CreatedAfter == nil || f.CreatedAt.After(*c.CreatedAfter),
		c.CreatedBefore == nil || f.CreatedAt.Before(*c.CreatedBefore),
		c.LastOrderAfter == nil || (f.LastOrderAt != nil && f.LastOrderAt.After(*c.LastOrderAfter)),
		c.LastOrderBefore == nil || (f.LastOrderAt != nil && f.LastOrderAt.Before(*c.LastOrderBefore)),
		hasAllTags(f.Tags, c.Tags),
	}
	matched := true
	for _, ok := range checks {
		matched = matched && ok
	}
	return matched
}

func hasAllTags(have, want []string) bool {
	for _, tag := range want {
		if !slices.Contains(have, tag) {
			return false
		}
	}
	return true
}
