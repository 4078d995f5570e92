// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short, non-reversible tag of a token for log correlation.
// Raw tokens never reach the logs.
func Fingerprint(rawToken string) string {
	if rawToken == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:6])
}
