// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/flavorfi/internal/platform/apperr"
	"github.com/taibuivan/flavorfi/internal/platform/constants"
	"github.com/taibuivan/flavorfi/internal/platform/ctxutil"
	"github.com/taibuivan/flavorfi/internal/platform/metrics"
	"github.com/taibuivan/flavorfi/internal/platform/sec"
	"github.com/taibuivan/flavorfi/internal/storage"
)

// expiryWriteTimeout bounds the store write issued from the expiry timer,
// which has no caller context.
const expiryWriteTimeout = 5 * time.Second

// ErrClosed is returned by operations on a manager after [Manager.Close].
var ErrClosed = errors.New("session: manager closed")

// Manager owns the current session and its single pending expiry timer.
//
// # Concurrency
//
// Front-end calls and the expiry timer run on different goroutines. A mutex
// serializes them, so no two transitions interleave. Whichever of the timer
// and an explicit Logout runs first wins; the other finds no session and does
// nothing.
type Manager struct {
	store     storage.Store
	clock     Clock
	scheduler Scheduler
	logger    *slog.Logger
	metrics   *metrics.Metrics
	onExpired func(Session)

	mu         sync.Mutex
	current    Session
	timer      Timer
	generation uint64
	closed     bool
}

// Option configures a [Manager].
type Option func(*Manager)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option { return func(m *Manager) { m.clock = clock } }

// WithScheduler replaces the timer implementation.
func WithScheduler(scheduler Scheduler) Option {
	return func(m *Manager) { m.scheduler = scheduler }
}

// WithLogger sets the logger. Without it, the logger in the call context is used.
func WithLogger(logger *slog.Logger) Option { return func(m *Manager) { m.logger = logger } }

// WithMetrics records transitions on the given collectors.
func WithMetrics(collectors *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = collectors }
}

// WithExpiryNotice registers the callback run once per expiry-driven logout.
// It receives the session that just ended and runs without the manager's lock held.
func WithExpiryNotice(notice func(Session)) Option {
	return func(m *Manager) { m.onExpired = notice }
}

// NewManager creates a manager over its own store namespace.
// Call [Manager.Initialize] once before use.
func NewManager(store storage.Store, options ...Option) *Manager {
	m := &Manager{
		store:     storage.Namespace(store, constants.NamespaceSession),
		clock:     systemClock{},
		scheduler: systemScheduler{},
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// # Lifecycle

/*
Initialize rehydrates the session persisted by a previous process.

Description: A malformed or already-expired snapshot is cleared from the store
and reported through the returned [Restore]; it is never an error. Only store
failures are returned as errors.

Parameters:
  - ctx: context.Context

Returns:
  - Restore: Outcome of the rehydration
  - error: Store failures
*/
func (m *Manager) Initialize(ctx context.Context) (Restore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return RestoreEmpty, ErrClosed
	}

	m.disarmLocked()
	m.current = Session{}

	snap, err := m.readSnapshot(ctx)
	if err != nil {
		return RestoreEmpty, err
	}
	if snap.token == "" && snap.identity == "" {
		return RestoreEmpty, nil
	}

	restored, err := decodeSnapshot(snap)
	if err != nil {
		m.log(ctx).Warn("session_snapshot_malformed", slog.Any("error", err))
		m.metrics.SessionEvent(metrics.SessionMalformed)
		return RestoreMalformed, m.clearStore(ctx)
	}

	if !restored.ExpiresAt.After(m.clock.Now()) {
		m.log(ctx).Info("session_expired_at_startup",
			slog.String("token_fp", sec.Fingerprint(restored.Token)),
			slog.Time("expired_at", restored.ExpiresAt),
		)
		m.metrics.SessionEvent(metrics.SessionExpired)
		return RestoreExpired, m.clearStore(ctx)
	}

	m.current = restored
	m.armLocked(restored.ExpiresAt)
	m.metrics.SessionEvent(metrics.SessionRestored)

	m.log(ctx).Debug("session_restored",
		slog.String("user_id", restored.Identity.UserID),
		slog.Time("expires_at", restored.ExpiresAt),
	)

	return RestoreAuthenticated, nil
}

// Close tears the manager down. The pending timer is disarmed and any callback
// already in flight is ignored. Close is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.disarmLocked()
}

// # Transitions

/*
Login replaces any existing session with a new one and arms its expiry.

Description: The token must carry a decodable exp claim, otherwise a
MALFORMED_TOKEN error is returned and nothing changes. A token that is already
expired is adopted and immediately logged out as expired.

Parameters:
  - ctx: context.Context
  - identity: Identity
  - token: string

Returns:
  - error: apperr MALFORMED_TOKEN, store failures, or ErrClosed
*/
func (m *Manager) Login(ctx context.Context, identity Identity, token string) error {
	expiresAt, err := sec.DecodeExpiry(token)
	if err != nil {
		m.metrics.SessionEvent(metrics.SessionMalformed)
		return apperr.MalformedToken(err)
	}

	next := Session{Token: token, Identity: &identity, ExpiresAt: expiresAt}
	snap, err := encodeSnapshot(next)
	if err != nil {
		return err
	}

	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	// Persist first so a failed write leaves the previous session intact.
	if err := m.store.Apply(ctx, snap.mutations()...); err != nil {
		m.mu.Unlock()
		m.log(ctx).Error("session_persist_failed", slog.Any("error", err))
		return err
	}

	m.disarmLocked()
	m.current = next
	m.metrics.SessionEvent(metrics.SessionLogin)

	m.log(ctx).Info("session_login",
		slog.String("user_id", identity.UserID),
		slog.String("token_fp", sec.Fingerprint(token)),
		slog.Time("expires_at", expiresAt),
	)

	if expiresAt.After(m.clock.Now()) {
		m.armLocked(expiresAt)
		m.mu.Unlock()
		return nil
	}

	// delay <= 0: expire synchronously instead of arming a timer.
	ended, err := m.endLocked(ctx, ReasonExpired)
	m.mu.Unlock()
	m.notify(ended, ReasonExpired)
	return err
}

/*
Logout ends the current session.

Description: The pending timer is always disarmed. Without an active session
the call does nothing else. The in-memory session is cleared even when the
store write fails; that failure is still returned. For ReasonExpired the
expiry notice runs once per ended session, never for a repeated call.

Parameters:
  - ctx: context.Context
  - reason: Reason

Returns:
  - error: Store failures
*/
func (m *Manager) Logout(ctx context.Context, reason Reason) error {
	m.mu.Lock()
	m.disarmLocked()
	ended, err := m.endLocked(ctx, reason)
	m.mu.Unlock()

	m.notify(ended, reason)
	return err
}

// # Queries

// Current returns a copy of the present session, or the empty session.
// It performs no I/O.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.clone()
}

// State reports whether a session is active.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.IsAuthenticated() {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

// # Internals

// armLocked schedules the expiry at expiresAt. Callers disarm first.
func (m *Manager) armLocked(expiresAt time.Time) {
	m.generation++
	generation := m.generation
	m.timer = m.scheduler.AfterFunc(expiresAt.Sub(m.clock.Now()), func() {
		m.expire(generation)
	})
}

// disarmLocked cancels the pending timer. Bumping the generation also voids a
// callback that already fired and is waiting for the lock.
func (m *Manager) disarmLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.generation++
}

// expire is the timer callback.
func (m *Manager) expire(generation uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), expiryWriteTimeout)
	defer cancel()

	m.mu.Lock()
	if m.closed || generation != m.generation {
		m.mu.Unlock()
		return
	}
	m.timer = nil

	ended, err := m.endLocked(ctx, ReasonExpired)
	m.mu.Unlock()

	if err != nil {
		m.log(ctx).Error("session_expiry_clear_failed", slog.Any("error", err))
	}
	m.notify(ended, ReasonExpired)
}

// endLocked clears the in-memory session and the persisted entries.
// It returns the session that ended, or the empty session when none was active.
func (m *Manager) endLocked(ctx context.Context, reason Reason) (Session, error) {
	if !m.current.IsAuthenticated() {
		return Session{}, nil
	}

	ended := m.current
	m.current = Session{}

	event := metrics.SessionLogout
	if reason == ReasonExpired {
		event = metrics.SessionExpired
	}
	m.metrics.SessionEvent(event)

	m.log(ctx).Info("session_ended",
		slog.String("reason", reason.String()),
		slog.String("user_id", ended.Identity.UserID),
		slog.String("token_fp", sec.Fingerprint(ended.Token)),
	)

	return ended, m.clearStore(ctx)
}

func (m *Manager) notify(ended Session, reason Reason) {
	if reason != ReasonExpired || !ended.IsAuthenticated() || m.onExpired == nil {
		return
	}
	m.onExpired(ended)
}

func (m *Manager) clearStore(ctx context.Context) error {
	if err := m.store.Apply(ctx, clearMutations()...); err != nil {
		m.log(ctx).Error("session_clear_failed", slog.Any("error", err))
		return err
	}
	return nil
}

func (m *Manager) readSnapshot(ctx context.Context) (snapshot, error) {
	token, err := m.readKey(ctx, constants.KeySessionToken)
	if err != nil {
		return snapshot{}, err
	}
	identity, err := m.readKey(ctx, constants.KeySessionIdentity)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{token: token, identity: identity}, nil
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
