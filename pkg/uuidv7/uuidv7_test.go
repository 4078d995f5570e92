// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuidv7_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/flavorfi/pkg/uuidv7"
)

/*
TestNew generates distinct version 7 IDs.
*/
func TestNew(t *testing.T) {
	first, second := uuidv7.New(), uuidv7.New()
	assert.NotEqual(t, first, second)
	assert.True(t, uuidv7.Valid(first))
	assert.False(t, uuidv7.Valid("550e8400-e29b-41d4-a716-446655440000"))
	assert.False(t, uuidv7.Valid("req-1"))
}
