// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/flavorfi/internal/platform/apperr"
	"github.com/taibuivan/flavorfi/internal/platform/metrics"
	"github.com/taibuivan/flavorfi/internal/platform/sec"
	"github.com/taibuivan/flavorfi/internal/session"
	"github.com/taibuivan/flavorfi/internal/storage"
)

// # Test Doubles

// fakeClock is a manual clock and scheduler. Timers fire only inside Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	action  func()
	fired   bool
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(delay time.Duration, action func()) session.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{at: c.now.Add(delay), action: action}
	c.timers = append(c.timers, timer)
	return timer
}

func (t *fakeTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every due timer outside the clock's lock.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, timer := range c.timers {
		if !timer.fired && !timer.stopped && !timer.at.After(c.now) {
			timer.fired = true
			due = append(due, timer)
		}
	}
	c.mu.Unlock()

	for _, timer := range due {
		timer.action()
	}
}

// Armed counts timers that are neither fired nor stopped.
func (c *fakeClock) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	armed := 0
	for _, timer := range c.timers {
		if !timer.fired && !timer.stopped {
			armed++
		}
	}
	return armed
}

// Scheduled counts every timer ever armed.
func (c *fakeClock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// failingStore wraps a store and fails writes on demand.
type failingStore struct {
	storage.Store
	failWrites bool
}

func (s *failingStore) Apply(ctx context.Context, mutations ...storage.Mutation) error {
	if s.failWrites {
		return errors.New("disk full")
	}
	return s.Store.Apply(ctx, mutations...)
}

// # Helpers

var alice = session.Identity{UserID: "7", Name: "Alice", Email: "alice@example.com", Role: sec.RoleCustomer}

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

type harness struct {
	store   storage.Store
	clock   *fakeClock
	notices []session.Session
	metrics *metrics.Metrics
	mu      sync.Mutex
}

func newHarness() *harness {
	return &harness{
		store:   storage.NewMemoryStore(),
		clock:   newFakeClock(),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
}

func (h *harness) manager() *session.Manager {
	return session.NewManager(h.store,
		session.WithClock(h.clock),
		session.WithScheduler(h.clock),
		session.WithMetrics(h.metrics),
		session.WithExpiryNotice(func(ended session.Session) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.notices = append(h.notices, ended)
		}),
	)
}

func (h *harness) noticeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.notices)
}

func (h *harness) persisted(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, err := h.store.Get(context.Background(), "session:"+key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return value, true
}

// # Initialize

/*
TestInitialize_Empty verifies the first run with nothing persisted.
*/
func TestInitialize_Empty(t *testing.T) {
	h := newHarness()
	m := h.manager()

	restore, err := m.Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, session.RestoreEmpty, restore)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Zero(t, h.clock.Scheduled())
}

/*
TestInitialize_AfterLoginRestoresSameSession simulates a reload right after login.
*/
func TestInitialize_AfterLoginRestoresSameSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	token := tokenExpiringAt(t, h.clock.Now().Add(time.Hour))

	first := h.manager()
	_, err := first.Initialize(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Login(ctx, alice, token))
	first.Close()

	reloaded := h.manager()
	restore, err := reloaded.Initialize(ctx)
	require.NoError(t, err)

	assert.Equal(t, session.RestoreAuthenticated, restore)
	assert.Equal(t, session.StateAuthenticated, reloaded.State())

	current := reloaded.Current()
	assert.Equal(t, token, current.Token)
	assert.Equal(t, alice, *current.Identity)
	assert.True(t, h.clock.Now().Add(time.Hour).Equal(current.ExpiresAt))
	assert.Equal(t, 1, h.clock.Armed())
}

/*
TestInitialize_ExpiredToken clears persisted entries and never arms a timer.
*/
func TestInitialize_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	// Seed the store as a previous process would have left it.
	writer := session.NewManager(h.store, session.WithClock(h.clock), session.WithScheduler(h.clock))
	require.NoError(t, writer.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(time.Second))))
	writer.Close()

	h.clock.Advance(2 * time.Second)
	scheduledBefore := h.clock.Scheduled()

	m := h.manager()
	restore, err := m.Initialize(ctx)
	require.NoError(t, err)

	assert.Equal(t, session.RestoreExpired, restore)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Equal(t, scheduledBefore, h.clock.Scheduled())

	_, hasToken := h.persisted(t, "token")
	_, hasIdentity := h.persisted(t, "identity")
	assert.False(t, hasToken)
	assert.False(t, hasIdentity)
	assert.Zero(t, h.noticeCount())
}

/*
TestInitialize_Malformed covers snapshots that must degrade to no session.
*/
func TestInitialize_Malformed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		entries map[string]string
	}{
		{"garbage_token", map[string]string{"token": "garbage", "identity": `{"user_id":"7"}`}},
		{"token_without_identity", map[string]string{"token": "eyJhbGciOiJIUzI1NiJ9.e30.x"}},
		{"identity_without_token", map[string]string{"identity": `{"user_id":"7"}`}},
		{"identity_not_json", map[string]string{"token": "", "identity": "{"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			for key, value := range tt.entries {
				require.NoError(t, h.store.Apply(ctx, storage.Put("session:"+key, value)))
			}

			m := h.manager()
			restore, err := m.Initialize(ctx)
			require.NoError(t, err)

			assert.Equal(t, session.RestoreMalformed, restore)
			assert.Equal(t, session.StateUnauthenticated, m.State())
			_, hasToken := h.persisted(t, "token")
			_, hasIdentity := h.persisted(t, "identity")
			assert.False(t, hasToken)
			assert.False(t, hasIdentity)
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionTransitions().WithLabelValues(metrics.SessionMalformed)))
		})
	}
}

/*
TestInitialize_ValidTokenBadIdentity treats an undecodable identity like a bad token.
*/
func TestInitialize_ValidTokenBadIdentity(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	require.NoError(t, h.store.Apply(ctx,
		storage.Put("session:token", tokenExpiringAt(t, h.clock.Now().Add(time.Hour))),
		storage.Put("session:identity", "not json"),
	))

	restore, err := h.manager().Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.RestoreMalformed, restore)
	assert.Zero(t, h.clock.Scheduled())
}

// # Login

/*
TestLogin_PersistsAndArmsOneTimer verifies the login side effects.
*/
func TestLogin_PersistsAndArmsOneTimer(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()
	token := tokenExpiringAt(t, h.clock.Now().Add(30*time.Minute))

	require.NoError(t, m.Login(ctx, alice, token))

	assert.Equal(t, session.StateAuthenticated, m.State())
	stored, ok := h.persisted(t, "token")
	require.True(t, ok)
	assert.Equal(t, token, stored)
	identity, ok := h.persisted(t, "identity")
	require.True(t, ok)
	assert.JSONEq(t, `{"user_id":"7","name":"Alice","email":"alice@example.com","role":"customer"}`, identity)
	assert.Equal(t, 1, h.clock.Armed())
}

/*
TestLogin_ReloginDisarmsPreviousTimer guarantees at most one pending expiry.
*/
func TestLogin_ReloginDisarmsPreviousTimer(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()

	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(10*time.Minute))))
	bob := session.Identity{UserID: "8", Name: "Bob", Email: "bob@example.com", Role: sec.RoleOwner}
	second := tokenExpiringAt(t, h.clock.Now().Add(time.Hour))
	require.NoError(t, m.Login(ctx, bob, second))

	assert.Equal(t, 1, h.clock.Armed())

	// The first token's instant passes: the stale timer must not log Bob out.
	h.clock.Advance(15 * time.Minute)
	assert.Equal(t, session.StateAuthenticated, m.State())
	assert.Equal(t, "8", m.Current().Identity.UserID)
	assert.Zero(t, h.noticeCount())

	h.clock.Advance(time.Hour)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Equal(t, 1, h.noticeCount())
}

/*
TestLogin_MalformedTokenLeavesSessionUntouched checks the MALFORMED_TOKEN result.
*/
func TestLogin_MalformedTokenLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()
	token := tokenExpiringAt(t, h.clock.Now().Add(time.Hour))
	require.NoError(t, m.Login(ctx, alice, token))

	err := m.Login(ctx, session.Identity{UserID: "9"}, "not-a-jwt")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeMalformedToken))
	assert.ErrorIs(t, err, sec.ErrMalformedToken)

	assert.Equal(t, token, m.Current().Token)
	assert.Equal(t, 1, h.clock.Armed())
}

/*
TestLogin_AlreadyExpiredTokenExpiresSynchronously applies the delay <= 0 rule.
*/
func TestLogin_AlreadyExpiredTokenExpiresSynchronously(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()

	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(-time.Second))))

	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Zero(t, h.clock.Scheduled())
	assert.Equal(t, 1, h.noticeCount())
	_, hasToken := h.persisted(t, "token")
	assert.False(t, hasToken)
}

/*
TestLogin_StoreFailureKeepsPreviousSession makes login all-or-nothing.
*/
func TestLogin_StoreFailureKeepsPreviousSession(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &failingStore{Store: storage.NewMemoryStore()}
	m := session.NewManager(store, session.WithClock(clock), session.WithScheduler(clock))

	first := tokenExpiringAt(t, clock.Now().Add(time.Hour))
	require.NoError(t, m.Login(ctx, alice, first))

	store.failWrites = true
	err := m.Login(ctx, session.Identity{UserID: "8"}, tokenExpiringAt(t, clock.Now().Add(2*time.Hour)))
	require.Error(t, err)

	assert.Equal(t, first, m.Current().Token)
	assert.Equal(t, "7", m.Current().Identity.UserID)
	assert.Equal(t, 1, clock.Armed())
}

// # Expiry & Logout

/*
TestExpiry_TimerLogsOutAndNotifiesOnce verifies the time-triggered transition.
*/
func TestExpiry_TimerLogsOutAndNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()
	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(time.Minute))))

	h.clock.Advance(59 * time.Second)
	assert.Equal(t, session.StateAuthenticated, m.State())

	h.clock.Advance(time.Second)
	assert.Equal(t, session.StateUnauthenticated, m.State())
	require.Equal(t, 1, h.noticeCount())
	assert.Equal(t, "7", h.notices[0].Identity.UserID)

	// A late explicit expiry call must not repeat the notice.
	require.NoError(t, m.Logout(ctx, session.ReasonExpired))
	assert.Equal(t, 1, h.noticeCount())

	_, hasToken := h.persisted(t, "token")
	assert.False(t, hasToken)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.SessionTransitions().WithLabelValues(metrics.SessionExpired)))
}

/*
TestLogout_ExplicitWinsOverTimer ensures the timer is a no-op after logout.
*/
func TestLogout_ExplicitWinsOverTimer(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()
	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(time.Minute))))

	require.NoError(t, m.Logout(ctx, session.ReasonExplicit))
	assert.Zero(t, h.clock.Armed())

	h.clock.Advance(time.Hour)
	assert.Zero(t, h.noticeCount())
	assert.Equal(t, session.StateUnauthenticated, m.State())
}

/*
TestLogout_Idempotent verifies that repeated logouts are harmless.
*/
func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()

	require.NoError(t, m.Logout(ctx, session.ReasonExplicit))
	require.NoError(t, m.Logout(ctx, session.ReasonExpired))
	assert.Zero(t, h.noticeCount())

	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(time.Hour))))
	require.NoError(t, m.Logout(ctx, session.ReasonExpired))
	require.NoError(t, m.Logout(ctx, session.ReasonExpired))
	assert.Equal(t, 1, h.noticeCount())
}

/*
TestLogout_StoreFailureStillClearsMemory keeps the security-relevant half.
*/
func TestLogout_StoreFailureStillClearsMemory(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &failingStore{Store: storage.NewMemoryStore()}
	m := session.NewManager(store, session.WithClock(clock), session.WithScheduler(clock))
	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, clock.Now().Add(time.Hour))))

	store.failWrites = true
	assert.Error(t, m.Logout(ctx, session.ReasonExplicit))
	assert.Equal(t, session.StateUnauthenticated, m.State())
	assert.Zero(t, clock.Armed())
}

/*
TestClose_StaleTimerDoesNotFire guards the teardown liveness rule.
*/
func TestClose_StaleTimerDoesNotFire(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()
	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(time.Minute))))

	m.Close()
	h.clock.Advance(time.Hour)

	assert.Zero(t, h.noticeCount())
	assert.ErrorIs(t, m.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(time.Hour))), session.ErrClosed)
}

/*
TestCurrent_ReturnsCopy keeps the identity immutable from the outside.
*/
func TestCurrent_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	m := h.manager()
	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, h.clock.Now().Add(time.Hour))))

	current := m.Current()
	current.Identity.Name = "Mallory"

	assert.Equal(t, "Alice", m.Current().Identity.Name)
}

/*
TestExpiry_RealScheduler exercises the time.AfterFunc-backed default.
*/
func TestExpiry_RealScheduler(t *testing.T) {
	ctx := context.Background()
	expired := make(chan session.Session, 1)
	m := session.NewManager(storage.NewMemoryStore(), session.WithExpiryNotice(func(ended session.Session) {
		expired <- ended
	}))
	defer m.Close()

	// exp has second precision; pick the next whole second plus one.
	exp := time.Now().Truncate(time.Second).Add(2 * time.Second)
	require.NoError(t, m.Login(ctx, alice, tokenExpiringAt(t, exp)))

	select {
	case ended := <-expired:
		assert.Equal(t, "7", ended.Identity.UserID)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not expire")
	}
	assert.Equal(t, session.StateUnauthenticated, m.State())
}
