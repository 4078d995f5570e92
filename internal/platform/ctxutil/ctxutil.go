// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil carries the invocation's request ID and logger through
// [context.Context], so the session, cart and API layers log under one ID.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/flavorfi/internal/platform/ctxkey"
)

// WithRequestID tags every API call made with ctx with id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// RequestID returns the ID set by [WithRequestID], or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// Logger returns the attached logger, falling back to [slog.Default].
// When ctx carries a request ID the logger is tagged with it.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		logger = slog.Default()
	}
	if id := RequestID(ctx); id != "" {
		return logger.With(slog.String("request_id", id))
	}
	return logger
}
