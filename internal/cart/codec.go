// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"encoding/json"
	"fmt"

	"github.com/taibuivan/flavorfi/internal/platform/constants"
	"github.com/taibuivan/flavorfi/internal/storage"
	"github.com/taibuivan/flavorfi/pkg/slice"
)

// # Snapshot Encoding

// mutations renders the full state as one store batch.
// An empty cart stores "[]" and drops the restaurant key.
func (s State) mutations() ([]storage.Mutation, error) {
	items := s.Items
	if items == nil {
		items = []Item{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("cart: failed to encode items: %w", err)
	}

	restaurant := storage.Remove(constants.KeyCartRestaurant)
	if s.RestaurantID != "" {
		restaurant = storage.Put(constants.KeyCartRestaurant, s.RestaurantID)
	}

	return []storage.Mutation{
		storage.Put(constants.KeyCartItems, string(data)),
		restaurant,
	}, nil
}

// decodeState parses the persisted values. Empty input yields the empty cart.
func decodeState(rawItems, restaurantID string) (State, error) {
	state := State{RestaurantID: restaurantID}
	if rawItems == "" {
		return state, nil
	}

	if err := json.Unmarshal([]byte(rawItems), &state.Items); err != nil {
		return State{}, fmt.Errorf("cart: failed to decode items: %w", err)
	}
	return state, nil
}

// normalize restores the invariants on state read from a store that another
// client version (or a hand edit) may have written. It reports whether
// anything had to change.
func normalize(s State) (State, bool) {
	valid := slice.Filter(s.Items, func(item Item) bool {
		return item.MenuID != "" && item.Quantity >= 1 && item.UnitPrice >= 0
	})
	changed := len(valid) != len(s.Items)
	merged := make([]Item, 0, len(valid))

	for _, item := range valid {
		found := false
		for i := range merged {
			if merged[i].MenuID == item.MenuID {
				merged[i].Quantity += item.Quantity
				found = true
				changed = true
				break
			}
		}
		if !found {
			merged = append(merged, item)
		}
	}

	// Items without a restaurant cannot be attributed; drop them.
	if s.RestaurantID == "" && len(merged) > 0 {
		return State{}, true
	}
	if len(merged) == 0 {
		return State{}, changed || s.RestaurantID != ""
	}

	return State{Items: merged, RestaurantID: s.RestaurantID}, changed
}
