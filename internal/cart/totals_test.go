// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/flavorfi/internal/cart"
)

/*
TestTotals covers the delivery threshold, discount clamping, and rounding.
*/
func TestTotals(t *testing.T) {
	policy := cart.DeliveryPolicy{Fee: 40, Threshold: 300}

	tests := []struct {
		name     string
		items    []cart.Item
		discount float64
		want     cart.Totals
	}{
		{
			name:     "below_threshold",
			items:    []cart.Item{{MenuID: "m1", UnitPrice: 100, Quantity: 2}},
			discount: 10,
			want:     cart.Totals{Subtotal: 200, Discount: 20, DeliveryFee: 40, Total: 220},
		},
		{
			name:     "above_threshold_after_discount",
			items:    []cart.Item{{MenuID: "m1", UnitPrice: 100, Quantity: 4}},
			discount: 10,
			want:     cart.Totals{Subtotal: 400, Discount: 40, DeliveryFee: 0, Total: 360},
		},
		{
			// 300 - 30 is not above the threshold, so the fee still applies.
			name:     "at_threshold_after_discount",
			items:    []cart.Item{{MenuID: "m1", UnitPrice: 100, Quantity: 3}},
			discount: 10,
			want:     cart.Totals{Subtotal: 300, Discount: 30, DeliveryFee: 40, Total: 310},
		},
		{
			name:     "discount_clamped_high",
			items:    []cart.Item{{MenuID: "m1", UnitPrice: 50, Quantity: 1}},
			discount: 150,
			want:     cart.Totals{Subtotal: 50, Discount: 50, DeliveryFee: 40, Total: 40},
		},
		{
			name:     "discount_clamped_low",
			items:    []cart.Item{{MenuID: "m1", UnitPrice: 50, Quantity: 1}},
			discount: -5,
			want:     cart.Totals{Subtotal: 50, Discount: 0, DeliveryFee: 40, Total: 90},
		},
		{
			name:     "rounded_only_on_output",
			items:    []cart.Item{{MenuID: "a", UnitPrice: 19.99, Quantity: 3}},
			discount: 12.5,
			want:     cart.Totals{Subtotal: 59.97, Discount: 7.5, DeliveryFee: 40, Total: 92.47},
		},
		{
			name: "empty_cart",
			want: cart.Totals{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state := cart.State{Items: tc.items}
			if len(tc.items) > 0 {
				state.RestaurantID = "r1"
			}
			got := state.Totals(tc.discount, policy)
			assert.InDelta(t, tc.want.Subtotal, got.Subtotal, 1e-9)
			assert.InDelta(t, tc.want.Discount, got.Discount, 1e-9)
			assert.InDelta(t, tc.want.DeliveryFee, got.DeliveryFee, 1e-9)
			assert.InDelta(t, tc.want.Total, got.Total, 1e-9)
		})
	}
}

/*
TestTotals_DoesNotMutate verifies computing totals leaves the cart alone.
*/
func TestTotals_DoesNotMutate(t *testing.T) {
	state := cart.State{Items: []cart.Item{{MenuID: "m1", UnitPrice: 100, Quantity: 2}}, RestaurantID: "r1"}
	snapshot := cart.State{Items: append([]cart.Item(nil), state.Items...), RestaurantID: "r1"}

	_ = state.Totals(10, cart.DefaultDeliveryPolicy())
	assert.Equal(t, snapshot, state)
}
