// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/taibuivan/flavorfi/internal/platform/constants"
	"github.com/taibuivan/flavorfi/internal/platform/ctxutil"
	"github.com/taibuivan/flavorfi/internal/platform/metrics"
	"github.com/taibuivan/flavorfi/internal/platform/validate"
	"github.com/taibuivan/flavorfi/internal/storage"
)

// Manager owns the cart and keeps it persisted.
//
// Every successful mutation writes the full state in one store batch before it
// becomes visible. A failed write leaves both memory and store at the previous
// state.
type Manager struct {
	store   storage.Store
	policy  DeliveryPolicy
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	state State
}

// Option configures a [Manager].
type Option func(*Manager)

// WithDeliveryPolicy overrides the default fee and threshold.
func WithDeliveryPolicy(policy DeliveryPolicy) Option {
	return func(m *Manager) { m.policy = policy }
}

// WithLogger sets the logger. Without it, the logger in the call context is used.
func WithLogger(logger *slog.Logger) Option { return func(m *Manager) { m.logger = logger } }

// WithMetrics records operations on the given collectors.
func WithMetrics(collectors *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = collectors }
}

// NewManager creates an empty cart over its own store namespace.
// Call [Manager.Load] to pick up a persisted cart.
func NewManager(store storage.Store, options ...Option) *Manager {
	m := &Manager{
		store:  storage.Namespace(store, constants.NamespaceCart),
		policy: DefaultDeliveryPolicy(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// # Persistence

/*
Load replaces the in-memory cart with the persisted one.

Description: Missing keys yield the empty cart. State that breaks an invariant
(duplicate lines, quantities below 1, items without a restaurant) is repaired
and the repaired form is written back.

Parameters:
  - ctx: context.Context

Returns:
  - error: Store or decode failures; the in-memory cart is then unchanged
*/
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rawItems, err := m.readKey(ctx, constants.KeyCartItems)
	if err != nil {
		return err
	}
	restaurantID, err := m.readKey(ctx, constants.KeyCartRestaurant)
	if err != nil {
		return err
	}

	loaded, err := decodeState(rawItems, restaurantID)
	if err != nil {
		m.log(ctx).Error("cart_decode_failed", slog.Any("error", err))
		return err
	}

	repaired, changed := normalize(loaded)
	if changed {
		m.log(ctx).Warn("cart_state_repaired",
			slog.Int("stored_lines", len(loaded.Items)),
			slog.Int("kept_lines", len(repaired.Items)),
		)
		if err := m.persistLocked(ctx, repaired); err != nil {
			return err
		}
	}

	m.state = repaired
	return nil
}

// # Mutations

/*
AddItem adds one unit of item from restaurantID.

Description: An empty cart adopts restaurantID. An existing line gains one
unit. When the cart belongs to a different restaurant nothing changes and the
result carries the conflict. The Quantity field of item is ignored.

Parameters:
  - ctx: context.Context
  - item: Item
  - restaurantID: string

Returns:
  - AddResult: Added or conflict
  - error: Validation or store failures
*/
func (m *Manager) AddItem(ctx context.Context, item Item, restaurantID string) (AddResult, error) {
	if err := validateAdd(item, restaurantID); err != nil {
		return AddResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsEmpty() && m.state.RestaurantID != restaurantID {
		m.metrics.CartOperation(metrics.CartAdd, metrics.OutcomeConflict)
		m.log(ctx).Info("cart_restaurant_conflict",
			slog.String("menu_id", item.MenuID),
			slog.String("restaurant_id", restaurantID),
			slog.String("active_restaurant_id", m.state.RestaurantID),
		)
		return AddResult{
			Outcome: OutcomeConflict,
			Conflict: &Conflict{
				Item:               item,
				RestaurantID:       restaurantID,
				ActiveRestaurantID: m.state.RestaurantID,
			},
		}, nil
	}

	next := m.state.clone()
	next.RestaurantID = restaurantID
	if i := next.indexOf(item.MenuID); i >= 0 {
		next.Items[i].Quantity++
	} else {
		item.Quantity = 1
		next.Items = append(next.Items, item)
	}

	if err := m.commitLocked(ctx, metrics.CartAdd, next); err != nil {
		return AddResult{}, err
	}
	return AddResult{Outcome: OutcomeAdded}, nil
}

// ResolveConflictByReplacing discards the current cart and starts a new one
// holding a single unit of item from restaurantID.
func (m *Manager) ResolveConflictByReplacing(ctx context.Context, item Item, restaurantID string) error {
	if err := validateAdd(item, restaurantID); err != nil {
		return err
	}

	item.Quantity = 1
	next := State{Items: []Item{item}, RestaurantID: restaurantID}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commitLocked(ctx, metrics.CartReplace, next)
}

// IncreaseQuantity adds one unit to an existing line. An unknown menuID is a no-op.
func (m *Manager) IncreaseQuantity(ctx context.Context, menuID string) error {
	return m.edit(ctx, metrics.CartIncrease, menuID, func(next *State, i int) {
		next.Items[i].Quantity++
	})
}

// DecreaseQuantity removes one unit; the line is removed at zero and the
// active restaurant is cleared with the last line. An unknown menuID is a no-op.
func (m *Manager) DecreaseQuantity(ctx context.Context, menuID string) error {
	return m.edit(ctx, metrics.CartDecrease, menuID, func(next *State, i int) {
		if next.Items[i].Quantity > 1 {
			next.Items[i].Quantity--
			return
		}
		next.removeAt(i)
	})
}

// RemoveItem deletes a line regardless of its quantity. An unknown menuID is a no-op.
func (m *Manager) RemoveItem(ctx context.Context, menuID string) error {
	return m.edit(ctx, metrics.CartRemove, menuID, func(next *State, i int) {
		next.removeAt(i)
	})
}

// Clear empties the cart and clears the active restaurant.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commitLocked(ctx, metrics.CartClear, State{})
}

// # Queries

// State returns a copy of the cart. It performs no I/O.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Count returns the total number of units in the cart.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Count()
}

// Totals computes the display amounts under the manager's delivery policy.
func (m *Manager) Totals(discountPercent float64) Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Totals(discountPercent, m.policy)
}

// Policy returns the delivery policy in use.
func (m *Manager) Policy() DeliveryPolicy { return m.policy }

// # Internals

// edit applies change to the line for menuID and commits the result.
func (m *Manager) edit(ctx context.Context, op, menuID string, change func(next *State, i int)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.state.indexOf(menuID)
	if i < 0 {
		m.metrics.CartOperation(op, metrics.OutcomeNoop)
		m.log(ctx).Debug("cart_edit_unknown_item", slog.String("op", op), slog.String("menu_id", menuID))
		return nil
	}

	next := m.state.clone()
	change(&next, i)
	return m.commitLocked(ctx, op, next)
}

// commitLocked persists next and only then makes it the current state.
func (m *Manager) commitLocked(ctx context.Context, op string, next State) error {
	if next.IsEmpty() {
		next = State{}
	}

	if err := m.persistLocked(ctx, next); err != nil {
		m.metrics.CartOperation(op, metrics.OutcomeFailed)
		return err
	}

	m.state = next
	m.metrics.CartOperation(op, metrics.OutcomeApplied)
	m.log(ctx).Debug("cart_updated",
		slog.String("op", op),
		slog.String("restaurant_id", next.RestaurantID),
		slog.Int("lines", len(next.Items)),
		slog.Int("units", next.Count()),
	)
	return nil
}

func (m *Manager) persistLocked(ctx context.Context, s State) error {
	batch, err := s.mutations()
	if err != nil {
		return err
	}
	if err := m.store.Apply(ctx, batch...); err != nil {
		m.log(ctx).Error("cart_persist_failed", slog.Any("error", err))
		return err
	}
	return nil
}

func (m *Manager) readKey(ctx context.Context, key string) (string, error) {
	value, err := m.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return value, err
}

func (m *Manager) log(ctx context.Context) *slog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return ctxutil.Logger(ctx)
}

func (s *State) removeAt(i int) {
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	if len(s.Items) == 0 {
		s.RestaurantID = ""
	}
}

func validateAdd(item Item, restaurantID string) error {
	v := &validate.Validator{}
	v.Required("menu_id", item.MenuID).
		Required("restaurant_id", restaurantID).
		NonNegative("price", item.UnitPrice)
	return v.Err()
}
