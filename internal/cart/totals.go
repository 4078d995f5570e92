// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"math"

	"github.com/taibuivan/flavorfi/internal/platform/constants"
	"github.com/taibuivan/flavorfi/pkg/slice"
)

// DeliveryPolicy decides the delivery fee.
type DeliveryPolicy struct {
	// Fee is charged unless the discounted subtotal exceeds Threshold.
	Fee       float64
	Threshold float64
}

// DefaultDeliveryPolicy returns the built-in fee and threshold.
func DefaultDeliveryPolicy() DeliveryPolicy {
	return DeliveryPolicy{
		Fee:       constants.DefaultDeliveryFee,
		Threshold: constants.DefaultFreeDeliveryThreshold,
	}
}

// Totals are the display amounts of a cart, each rounded to 2 decimals.
type Totals struct {
	Subtotal    float64
	Discount    float64
	DeliveryFee float64
	Total       float64
}

/*
Totals computes the amounts for the cart. It never mutates the state.

Description: Amounts accumulate at full precision and only the outputs are
rounded. discountPercent is clamped to [0, 100]. An empty cart costs nothing,
delivery included.

Parameters:
  - discountPercent: float64 (already validated by the promo collaborator)
  - policy: DeliveryPolicy

Returns:
  - Totals: Rounded display amounts
*/
func (s State) Totals(discountPercent float64, policy DeliveryPolicy) Totals {
	if s.IsEmpty() {
		return Totals{}
	}

	discountPercent = math.Max(0, math.Min(100, discountPercent))

	subtotal := slice.Sum(s.Items, func(item Item) float64 {
		return item.UnitPrice * float64(item.Quantity)
	})

	discount := subtotal * discountPercent / 100

	fee := policy.Fee
	if subtotal-discount > policy.Threshold {
		fee = 0
	}

	return Totals{
		Subtotal:    round2(subtotal),
		Discount:    round2(discount),
		DeliveryFee: round2(fee),
		Total:       round2(subtotal - discount + fee),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
