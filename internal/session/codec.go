// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"encoding/json"
	"fmt"

	"github.com/taibuivan/flavorfi/internal/platform/constants"
	"github.com/taibuivan/flavorfi/internal/platform/sec"
	"github.com/taibuivan/flavorfi/internal/storage"
)

// # Snapshot Encoding

// snapshot is the persisted form of a session: the raw token and the identity record.
type snapshot struct {
	token    string
	identity string
}

func encodeSnapshot(s Session) (snapshot, error) {
	data, err := json.Marshal(s.Identity)
	if err != nil {
		return snapshot{}, fmt.Errorf("session: failed to encode identity: %w", err)
	}
	return snapshot{token: s.Token, identity: string(data)}, nil
}

// decodeSnapshot rebuilds a session, deriving the expiry from the token.
// Any failure wraps [sec.ErrMalformedToken].
func decodeSnapshot(snap snapshot) (Session, error) {
	if snap.token == "" || snap.identity == "" {
		return Session{}, fmt.Errorf("%w: partial session snapshot", sec.ErrMalformedToken)
	}

	expiresAt, err := sec.DecodeExpiry(snap.token)
	if err != nil {
		return Session{}, err
	}

	identity := &Identity{}
	if err := json.Unmarshal([]byte(snap.identity), identity); err != nil {
		return Session{}, fmt.Errorf("%w: identity: %v", sec.ErrMalformedToken, err)
	}

	return Session{Token: snap.token, Identity: identity, ExpiresAt: expiresAt}, nil
}

func (snap snapshot) mutations() []storage.Mutation {
	return []storage.Mutation{
		storage.Put(constants.KeySessionToken, snap.token),
		storage.Put(constants.KeySessionIdentity, snap.identity),
	}
}

func clearMutations() []storage.Mutation {
	return []storage.Mutation{
		storage.Remove(constants.KeySessionToken),
		storage.Remove(constants.KeySessionIdentity),
	}
}
