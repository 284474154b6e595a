package discount

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pricing-api/internal/pricing"
)

var (
	// ErrUnknownCode is returned when no rule exists for the given code.
	ErrUnknownCode = errors.New("discount code not found")
	// ErrDisabled indicates the rule has been switched off by an admin.
	ErrDisabled = errors.New("discount disabled")
	// ErrNotYetActive is returned when attempting to use a rule before its window opens.
	ErrNotYetActive = errors.New("discount not yet active")
	// ErrExpired is returned when the rule validity window has closed.
	ErrExpired = errors.New("discount expired")
	// ErrUsageLimitReached indicates the rule has exhausted its redemption quota.
	ErrUsageLimitReached = errors.New("discount usage limit reached")
	// ErrMinimumSpendUnmet indicates the cart subtotal did not meet the rule requirement.
	ErrMinimumSpendUnmet = errors.New("discount minimum spend not met")
)

// Discount kinds, aligned with the pricing engine.
const (
	KindPercentage = pricing.KindPercentage
	KindFixed      = pricing.KindFixed
)

// Rule captures the runtime constraints of a discount code.
type Rule struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	Kind       string     `json:"kind"`
	Value      int64      `json:"value"`
	PercentBps int32      `json:"percentBps"`
	MinSpend   int64      `json:"minSpend"`
	UsageLimit *int32     `json:"usageLimit,omitempty"`
	UsedCount  int32      `json:"usedCount"`
	Active     bool       `json:"active"`
	ValidFrom  *time.Time `json:"validFrom,omitempty"`
	ValidTo    *time.Time `json:"validTo,omitempty"`
}

// Validate ensures the rule can be applied at the provided instant and subtotal.
func (r Rule) Validate(now time.Time, subtotal int64) error {
	if !r.Active {
		return ErrDisabled
	}
	if subtotal < r.MinSpend {
		return ErrMinimumSpendUnmet
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return ErrNotYetActive
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return ErrExpired
	}
	if r.UsageLimit != nil && *r.UsageLimit >= 0 && r.UsedCount >= *r.UsageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

// Amount determines the discount amount for the given subtotal, clamped to [0, subtotal].
func (r Rule) Amount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	amount := r.Value
	if r.Kind == KindPercentage {
		if r.PercentBps <= 0 {
			return 0
		}
		amount = (subtotal*int64(r.PercentBps) + 5000) / 10000
	}
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		return 0
	}
	return amount
}

// ToPricing converts the rule into the engine's discount input.
func (r Rule) ToPricing() pricing.Discount {
	return pricing.Discount{
		Code:       r.Code,
		Kind:       r.Kind,
		Value:      r.Value,
		PercentBps: int(r.PercentBps),
	}
}

// RejectionCode maps a validation sentinel to a stable machine-readable code.
// Unknown errors return an empty string.
func RejectionCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownCode):
		return "UNKNOWN_CODE"
	case errors.Is(err, ErrDisabled):
		return "DISABLED"
	case errors.Is(err, ErrNotYetActive):
		return "NOT_YET_ACTIVE"
	case errors.Is(err, ErrExpired):
		return "EXPIRED"
	case errors.Is(err, ErrUsageLimitReached):
		return "USAGE_LIMIT_REACHED"
	case errors.Is(err, ErrMinimumSpendUnmet):
		return "MINIMUM_SPEND_UNMET"
	default:
		return ""
	}
}
