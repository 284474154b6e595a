// Package quote is the single place order totals are computed. Checkout
// previews, payment-intent creation, confirmation emails and webhook
// reconciliation all go through the same computation instead of re-deriving
// subtotal, shipping and tax independently.
package quote

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/pricing-api/internal/discount"
	"github.com/noah-isme/pricing-api/internal/pricing"
)

// DiscountSource resolves a discount code into an evaluable rule.
type DiscountSource interface {
	Resolve(ctx context.Context, code string) (discount.Rule, error)
}

// Request carries the cart and the selected shipping option.
type Request struct {
	Items        []pricing.Item
	ShippingRate pricing.Money
	DiscountCode string
}

// AppliedDiscount reports which rule was applied and what it deducted.
type AppliedDiscount struct {
	Code   string `json:"code"`
	Kind   string `json:"kind"`
	Amount int64  `json:"amount"`
}

// Quote is the totals breakdown returned to every caller.
type Quote struct {
	Breakdown pricing.Breakdown
	Currency  string
	Discount  *AppliedDiscount
	// DiscountRejection holds a stable reason code when a submitted discount
	// code could not be applied. The quote itself still succeeds.
	DiscountRejection string
}

// Service computes quotes using the configured store policies.
type Service struct {
	Discounts     DiscountSource
	TaxBps        int
	FreeThreshold pricing.Money
	Currency      string
	Now           func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Compute resolves the optional discount code and prices the cart. A code
// that fails validation does not fail the quote; the rejection reason is
// surfaced so the caller can message the customer.
func (s *Service) Compute(ctx context.Context, in Request) (Quote, error) {
	if s == nil {
		return Quote{}, errors.New("quote service not configured")
	}

	ship := pricing.ShippingPolicy{BaseRate: in.ShippingRate, FreeThreshold: s.FreeThreshold}
	tax := pricing.TaxPolicy{RateBps: s.TaxBps}

	var (
		applied   *pricing.Discount
		info      *AppliedDiscount
		rejection string
	)
	if in.DiscountCode != "" {
		if s.Discounts == nil {
			return Quote{}, errors.New("discount source not configured")
		}
		subtotal := pricing.Subtotal(in.Items)
		rule, err := s.Discounts.Resolve(ctx, in.DiscountCode)
		if err == nil {
			err = rule.Validate(s.now(), subtotal)
		}
		switch {
		case err == nil:
			d := rule.ToPricing()
			applied = &d
			info = &AppliedDiscount{Code: rule.Code, Kind: rule.Kind, Amount: rule.Amount(subtotal)}
		default:
			rejection = discount.RejectionCode(err)
			if rejection == "" {
				return Quote{}, err
			}
		}
	}

	breakdown, err := pricing.Compute(in.Items, ship, tax, applied)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Breakdown:         breakdown,
		Currency:          s.Currency,
		Discount:          info,
		DiscountRejection: rejection,
	}, nil
}
