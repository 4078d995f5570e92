// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements the client-side Session Manager: the single authority
for "is the user authenticated right now".

# Architecture

The manager owns the access token, the identity returned at login, and one
scheduled expiry action. The expiry instant is read from the token's exp claim,
so the session ends on time without any further network call.

State machine:

	Unauthenticated --Login--> Authenticated
	Authenticated --Logout(explicit)--> Unauthenticated
	Authenticated --expiry timer / Logout(expired)--> Unauthenticated

There is no renew edge. A session near or past expiry re-authenticates via Login.
*/
package session

import (
	"time"

	"github.com/taibuivan/flavorfi/internal/platform/sec"
)

// # Domain Entities

// Identity is the user profile returned by the authentication service.
// It is replaced wholesale on login and never edited in place.
type Identity struct {
	UserID string       `json:"user_id"`
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Role   sec.UserRole `json:"role"`
}

// Session is the in-memory view of who is logged in and until when.
// Token and Identity are both set or both empty.
type Session struct {
	Token     string
	Identity  *Identity
	ExpiresAt time.Time
}

// IsAuthenticated reports whether the session carries a token and an identity.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.Identity != nil
}

// clone returns a copy whose Identity does not alias the manager's.
func (s Session) clone() Session {
	if s.Identity != nil {
		identity := *s.Identity
		s.Identity = &identity
	}
	return s
}

// # State Machine

// State is the authentication state exposed to front ends.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Reason tells why a session ended.
type Reason int

const (
	// ReasonExplicit is a user-initiated logout.
	ReasonExplicit Reason = iota
	// ReasonExpired is a logout caused by the token's expiry.
	ReasonExpired
)

func (r Reason) String() string {
	if r == ReasonExpired {
		return "expired"
	}
	return "explicit"
}

// Restore is the outcome of rehydrating the session at process start.
type Restore int

const (
	// RestoreEmpty means nothing was persisted.
	RestoreEmpty Restore = iota
	// RestoreAuthenticated means a live session was adopted and its expiry armed.
	RestoreAuthenticated
	// RestoreExpired means the persisted token had already expired; entries were cleared.
	RestoreExpired
	// RestoreMalformed means the persisted data could not be decoded; entries were cleared.
	RestoreMalformed
)

func (r Restore) String() string {
	switch r {
	case RestoreAuthenticated:
		return "authenticated"
	case RestoreExpired:
		return "expired"
	case RestoreMalformed:
		return "malformed"
	default:
		return "empty"
	}
}
