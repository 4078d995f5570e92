// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package remote is the HTTP client for the FlavorFi API.

It covers accounts, the restaurant catalog and orders. Failures are mapped
to [apperr.AppError] from the status code and the server's {"msg": ...} body,
so callers branch on error codes rather than on HTTP details.

# Retries

Idempotent reads retry with exponential backoff on transport errors and
5xx/429 answers. Writes are sent once: a lost response to POST /orders must
never place the order twice.
*/
package remote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/taibuivan/flavorfi/internal/platform/apperr"
	"github.com/taibuivan/flavorfi/internal/platform/constants"
	"github.com/taibuivan/flavorfi/internal/platform/ctxutil"
	"github.com/taibuivan/flavorfi/pkg/uuidv7"
)

// Client talks to one API base URL. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithTimeout bounds every single attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(timeout) }
}

// WithRetries sets how often a read is retried and the backoff bounds.
func WithRetries(maxRetries uint64, initial, max time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialInterval = initial
		c.maxInterval = max
	}
}

// WithRateLimit caps outgoing requests per second. A burst of one keeps the
// client from hammering the API when a user repeats a command quickly.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

// WithLogger sets the logger. Without it, the logger in the call context is used.
func WithLogger(logger *slog.Logger) Option { return func(c *Client) { c.logger = logger } }

// New creates a client for baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetTimeout(constants.DefaultAPITimeout),
		limiter:         rate.NewLimiter(rate.Inf, 1),
		maxRetries:      3,
		initialInterval: constants.DefaultRetryInitialInterval,
		maxInterval:     constants.DefaultRetryMaxInterval,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// # Accounts

// Login exchanges credentials for a token. Wrong credentials yield UNAUTHORIZED.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/login", "", body, &out)
	return out, err
}

// Register creates an account. A taken email yields CONFLICT.
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	return c.do(ctx, http.MethodPost, "/register", "", in, nil)
}

// Profile returns the account behind token.
func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var out Profile
	err := c.do(ctx, http.MethodGet, "/profile", token, nil, &out)
	return out, err
}

// # Catalog

// Restaurants lists every restaurant.
func (c *Client) Restaurants(ctx context.Context) ([]Restaurant, error) {
	var out []Restaurant
	err := c.do(ctx, http.MethodGet, "/restaurants", "", nil, &out)
	return out, err
}

// Menu returns a restaurant with its dishes.
func (c *Client) Menu(ctx context.Context, restaurantID ID) (Menu, error) {
	var out Menu
	err := c.do(ctx, http.MethodGet, "/restaurants/"+restaurantID.String()+"/menus", "", nil, &out)
	return out, err
}

// # Orders

// PlaceOrder submits an order. It is never retried.
func (c *Client) PlaceOrder(ctx context.Context, token string, in OrderInput) (OrderReceipt, error) {
	var out OrderReceipt
	err := c.do(ctx, http.MethodPost, "/orders", token, in, &out)
	return out, err
}

// Orders lists the orders of the account behind token.
func (c *Client) Orders(ctx context.Context, token string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := c.do(ctx, http.MethodGet, "/orders", token, nil, &out)
	return out, err
}

// Order returns one order with its lines.
func (c *Client) Order(ctx context.Context, token string, orderID ID) (OrderDetail, error) {
	var out OrderDetail
	err := c.do(ctx, http.MethodGet, "/orders/"+orderID.String(), token, nil, &out)
	return out, err
}

// # Transport

/*
do sends one logical request.

Description: All attempts share one request id, taken from ctx when present.
Every attempt waits on the rate limiter first. Only GET is retried.

Parameters:
  - ctx: context.Context
  - method, path: string
  - token: string (empty for anonymous calls)
  - body: any (nil for none)
  - out: any (nil to discard the response body)

Returns:
  - error: *apperr.AppError for API and transport failures, or the context error
*/
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	requestID := ctxutil.RequestID(ctx)
	if requestID == "" {
		requestID = uuidv7.New()
	}

	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		request := c.http.R().
			SetContext(ctx).
			SetHeader(constants.HeaderRequestID, requestID).
			SetError(&errorBody{})
		if token != "" {
			request.SetAuthToken(token)
		}
		if body != nil {
			request.SetBody(body)
		}
		if out != nil {
			request.SetResult(out)
		}

		start := time.Now()
		response, err := request.Execute(method, path)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return apperr.Unavailable("The API could not be reached", err)
		}

		c.log(ctx).Debug("api_call",
			slog.String("request_id", requestID),
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", response.StatusCode()),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			slog.Int("attempt", attempt),
		)

		if !response.IsError() {
			return nil
		}

		apiErr := statusError(response)
		if retryable(response.StatusCode()) {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	if method != http.MethodGet {
		return unwrapPermanent(operation())
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	policy.MaxInterval = c.maxInterval
	policy.MaxElapsedTime = 0

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx),
		func(err error, wait time.Duration) {
			c.log(ctx).Warn("api_call_retry",
				slog.String("request_id", requestID),
				slog.String("path", path),
				slog.Duration("wait", wait),
				slog.Any("error", err),
			)
		},
	)
	return unwrapPermanent(err)
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return ctxutil.Logger(ctx)
}

// statusError maps a failed response to an application error.
func statusError(response *resty.Response) error {
	message := http.StatusText(response.StatusCode())
	if body, ok := response.Error().(*errorBody); ok && body.Msg != "" {
		message = body.Msg
	}
	return apperr.FromStatus(response.StatusCode(), message)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// unwrapPermanent strips the marker from errors that skipped the retry loop.
func unwrapPermanent(err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}
