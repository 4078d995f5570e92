// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/flavorfi/internal/platform/sec"
)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

/*
TestDecodeExpiry_ReadsExpClaim verifies that expiry is read without the signing key.
*/
func TestDecodeExpiry_ReadsExpClaim(t *testing.T) {
	exp := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	token := signToken(t, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	got, err := sec.DecodeExpiry(token)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	claims, err := sec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
}

/*
TestDecodeExpiry_PastExpiryIsNotAnError checks that an expired token still decodes.
*/
func TestDecodeExpiry_PastExpiryIsNotAnError(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})

	got, err := sec.DecodeExpiry(token)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

/*
TestDecodeExpiry_Malformed covers every input that must degrade to a malformed token.
*/
func TestDecodeExpiry_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"bad_base64", "a.b.c"},
		{"missing_exp", signToken(t, jwt.RegisteredClaims{Subject: "7"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.DecodeExpiry(tt.token)
			assert.ErrorIs(t, err, sec.ErrMalformedToken)
		})
	}
}

/*
TestFingerprint checks that fingerprints are stable and never echo the token.
*/
func TestFingerprint(t *testing.T) {
	assert.Empty(t, sec.Fingerprint(""))
	assert.Equal(t, sec.Fingerprint("abc"), sec.Fingerprint("abc"))
	assert.NotEqual(t, sec.Fingerprint("abc"), sec.Fingerprint("abd"))
	assert.Len(t, sec.Fingerprint("abc"), 12)
}
