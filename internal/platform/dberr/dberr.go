// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between storage backend errors and
// higher-level application errors.
//
// Backends report very different failures (SQLSTATE codes, socket errors,
// driver sentinels). Wrap folds them into two codes callers can act on:
// UNAVAILABLE when retrying later may help, INTERNAL_ERROR otherwise.
package dberr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/flavorfi/internal/platform/apperr"
)

// Wrap classifies a backend error and records the failed action.
// Context cancellation is returned unchanged.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	cause := fmt.Errorf("%s: %w", action, err)

	// 1. Server-side rejections are bugs or schema drift, not outages.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return apperr.Internal(cause)
	}

	// 2. Connectivity
	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return apperr.Unavailable("The store is unreachable", cause)
	}

	return apperr.Internal(cause)
}
