// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the client-side token primitives.
//
// # Architecture
//
// The client never holds the server's signing key. It only needs to read the
// claims the server embedded in the access token (expiry, subject) so the
// session can expire on time without another network call. Signature checks
// stay with the API.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be parsed or carries no expiry.
var ErrMalformedToken = errors.New("sec: malformed token")

// Claims represents the subset of the access token payload the client reads.
type Claims struct {
	jwt.RegisteredClaims
}

// parser skips signature verification and claim validation; expiry is
// compared against the session clock by the caller.
var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Decode reads the claims of a JWT without verifying its signature.
func Decode(rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}

	return claims, nil
}

// DecodeExpiry returns the instant encoded in the token's exp claim.
func DecodeExpiry(rawToken string) (time.Time, error) {
	claims, err := Decode(rawToken)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}
