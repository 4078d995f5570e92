// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cart implements the client-side Cart Manager.

A cart holds items from exactly one restaurant, the active restaurant. Adding
an item from another restaurant is not merged and not an error. It is reported
as a conflict the front end resolves, typically by asking the user and then
calling [Manager.ResolveConflictByReplacing].

# Invariants

  - Items are unique by MenuID.
  - Quantity is always at least 1; an item reduced below 1 is removed.
  - Items and the active restaurant are empty together or set together.
*/
package cart

import "github.com/taibuivan/flavorfi/pkg/slice"

// # Domain Entities

// Item is a single cart line. JSON names match the catalog payload.
type Item struct {
	MenuID    string  `json:"menu_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageRef  string  `json:"image_name,omitempty"`
}

// State is the full cart: ordered items plus the active restaurant.
// RestaurantID is empty exactly when Items is empty.
type State struct {
	Items        []Item
	RestaurantID string
}

// IsEmpty reports whether the cart holds no items.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Count returns the total number of units in the cart.
func (s State) Count() int {
	return slice.Sum(s.Items, func(item Item) int { return item.Quantity })
}

// Find returns the line for menuID.
func (s State) Find(menuID string) (Item, bool) {
	if i := s.indexOf(menuID); i >= 0 {
		return s.Items[i], true
	}
	return Item{}, false
}

func (s State) indexOf(menuID string) int {
	for i, item := range s.Items {
		if item.MenuID == menuID {
			return i
		}
	}
	return -1
}

// clone copies the item slice so callers never alias manager state.
func (s State) clone() State {
	if s.Items != nil {
		s.Items = append([]Item(nil), s.Items...)
	}
	return s
}

// # Add Outcomes

// Outcome tells whether an add changed the cart.
type Outcome int

const (
	// OutcomeAdded means the item was appended or its quantity incremented.
	OutcomeAdded Outcome = iota
	// OutcomeConflict means the cart belongs to another restaurant; nothing changed.
	OutcomeConflict
)

func (o Outcome) String() string {
	if o == OutcomeConflict {
		return "restaurant_conflict"
	}
	return "added"
}

// Conflict carries what the front end needs to offer a resolution.
type Conflict struct {
	Item               Item
	RestaurantID       string
	ActiveRestaurantID string
}

// AddResult is the value returned by [Manager.AddItem].
type AddResult struct {
	Outcome  Outcome
	Conflict *Conflict
}
