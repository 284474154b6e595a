package pricing

import (
	"errors"
	"fmt"
)

// Money represents a monetary value stored in minor units (pence).
type Money = int64

// MinimumChargeable is the smallest total the payment provider will accept.
const MinimumChargeable Money = 50

// ErrInvalidInput is returned when the cart or policy inputs are malformed.
// All validation happens before any amount is computed.
var ErrInvalidInput = errors.New("invalid pricing input")

// Discount kinds supported by the engine.
const (
	KindPercentage = "percentage"
	KindFixed      = "fixed"
)

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// ShippingPolicy describes the selected shipping method and the free-shipping rule.
type ShippingPolicy struct {
	BaseRate      Money
	FreeThreshold Money
}

// TaxPolicy describes the VAT rate in basis points (2000 = 20%).
type TaxPolicy struct {
	RateBps int
}

// Discount describes a discount to apply. Value carries the fixed amount in
// minor units; PercentBps carries the percentage in basis points.
type Discount struct {
	Code       string
	Kind       string
	Value      Money
	PercentBps int
}

// Breakdown aggregates computed pricing components.
type Breakdown struct {
	Subtotal     Money
	Discount     Money
	Shipping     Money
	Tax          Money
	Total        Money
	FreeShipping bool
}

// Subtotal sums line totals without applying any policy.
func Subtotal(items []Item) Money {
	var subtotal Money
	for _, it := range items {
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	return subtotal
}

// Compute calculates cart totals with a fixed order of operations:
// subtotal, discount (clamped to subtotal), free-shipping eligibility on the
// pre-discount subtotal, shipping, tax on (discounted subtotal + shipping),
// then total floored at MinimumChargeable. Amounts are integer minor units;
// the only divisions (percentage discount, tax) round half-up at the final
// output of the derived field.
func Compute(items []Item, ship ShippingPolicy, tax TaxPolicy, discount *Discount) (Breakdown, error) {
	if err := validate(items, ship, tax, discount); err != nil {
		return Breakdown{}, err
	}

	subtotal := Subtotal(items)

	var discountAmount Money
	if discount != nil {
		switch discount.Kind {
		case KindPercentage:
			discountAmount = divRoundHalfUp(subtotal*Money(discount.PercentBps), 10000)
		case KindFixed:
			discountAmount = discount.Value
		}
		if discountAmount > subtotal {
			discountAmount = subtotal
		}
		if discountAmount < 0 {
			discountAmount = 0
		}
	}
	discounted := subtotal - discountAmount

	freeShipping := subtotal >= ship.FreeThreshold
	var shipping Money
	if !freeShipping {
		shipping = ship.BaseRate
	}

	taxable := discounted + shipping
	taxAmount := divRoundHalfUp(taxable*Money(tax.RateBps), 10000)

	total := discounted + shipping + taxAmount
	if total < MinimumChargeable {
		total = MinimumChargeable
	}

	return Breakdown{
		Subtotal:     subtotal,
		Discount:     discountAmount,
		Shipping:     shipping,
		Tax:          taxAmount,
		Total:        total,
		FreeShipping: freeShipping,
	}, nil
}

func validate(items []Item, ship ShippingPolicy, tax TaxPolicy, discount *Discount) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: cart has no items", ErrInvalidInput)
	}
	for i, it := range items {
		if it.Qty < 1 {
			return fmt.Errorf("%w: item %d has qty %d", ErrInvalidInput, i, it.Qty)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("%w: item %d has negative unit price", ErrInvalidInput, i)
		}
	}
	if ship.BaseRate < 0 {
		return fmt.Errorf("%w: negative shipping rate", ErrInvalidInput)
	}
	if ship.FreeThreshold < 0 {
		return fmt.Errorf("%w: negative free-shipping threshold", ErrInvalidInput)
	}
	if tax.RateBps < 0 {
		return fmt.Errorf("%w: negative tax rate", ErrInvalidInput)
	}
	if discount != nil {
		switch discount.Kind {
		case KindPercentage:
			if discount.PercentBps < 0 || discount.PercentBps > 10000 {
				return fmt.Errorf("%w: percentage discount out of range", ErrInvalidInput)
			}
		case KindFixed:
			if discount.Value < 0 {
				return fmt.Errorf("%w: negative fixed discount", ErrInvalidInput)
			}
		default:
			return fmt.Errorf("%w: unknown discount kind %q", ErrInvalidInput, discount.Kind)
		}
	}
	return nil
}

func divRoundHalfUp(numerator, denominator Money) Money {
	return (numerator + denominator/2) / denominator
}
