// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus counters for session and cart transitions.

The collectors are registered on a caller-supplied registerer so tests and
embedders can keep them isolated. A nil [*Metrics] is a valid no-op, which lets
the managers call it unconditionally.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// # Session Events

const (
	SessionLogin     = "login"
	SessionLogout    = "logout"
	SessionExpired   = "expired"
	SessionMalformed = "malformed"
	SessionRestored  = "restored"
)

// # Cart Operations

const (
	CartAdd      = "add"
	CartReplace  = "replace"
	CartIncrease = "increase"
	CartDecrease = "decrease"
	CartRemove   = "remove"
	CartClear    = "clear"

	OutcomeApplied  = "applied"
	OutcomeConflict = "conflict"
	OutcomeNoop     = "noop"
	OutcomeFailed   = "failed"
)

// Metrics groups the counters used by the client core.
type Metrics struct {
	sessionTransitions *prometheus.CounterVec
	cartOperations     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flavorfi",
				Name:      "session_transitions_total",
				Help:      "Session state transitions by event.",
			},
			[]string{"event"},
		),
		cartOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flavorfi",
				Name:      "cart_operations_total",
				Help:      "Cart operations by kind and outcome.",
			},
			[]string{"op", "outcome"},
		),
	}

	reg.MustRegister(m.sessionTransitions, m.cartOperations)
	return m
}

// SessionEvent counts one session transition.
func (m *Metrics) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.sessionTransitions.WithLabelValues(event).Inc()
}

// CartOperation counts one cart operation with its outcome.
func (m *Metrics) CartOperation(op, outcome string) {
	if m == nil {
		return
	}
	m.cartOperations.WithLabelValues(op, outcome).Inc()
}

// SessionTransitions exposes the underlying vector for inspection in tests.
func (m *Metrics) SessionTransitions() *prometheus.CounterVec { return m.sessionTransitions }

// CartOperations exposes the underlying vector for inspection in tests.
func (m *Metrics) CartOperations() *prometheus.CounterVec { return m.cartOperations }
