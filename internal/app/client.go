// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app is the facade a front end drives.

It owns one session manager and one cart manager over a shared store, and
talks to the API through [API]. Each method is one user action: it validates
input, calls the API where needed, and updates local state.

# Session loss

Any call made with a token the server rejects (401) ends the local session as
expired, exactly like the expiry timer would, so the front end reacts through
a single path.
*/
package app

import (
	"context"
	"log/slog"

	"github.com/taibuivan/flavorfi/internal/cart"
	"github.com/taibuivan/flavorfi/internal/platform/apperr"
	"github.com/taibuivan/flavorfi/internal/platform/ctxutil"
	"github.com/taibuivan/flavorfi/internal/platform/metrics"
	"github.com/taibuivan/flavorfi/internal/platform/sec"
	"github.com/taibuivan/flavorfi/internal/platform/validate"
	"github.com/taibuivan/flavorfi/internal/remote"
	"github.com/taibuivan/flavorfi/internal/session"
	"github.com/taibuivan/flavorfi/internal/storage"
)

// API is the subset of the remote client the facade depends on.
type API interface {
	Login(ctx context.Context, email, password string) (remote.LoginResult, error)
	Register(ctx context.Context, in remote.RegisterInput) error
	Profile(ctx context.Context, token string) (remote.Profile, error)
	Restaurants(ctx context.Context) ([]remote.Restaurant, error)
	Menu(ctx context.Context, restaurantID remote.ID) (remote.Menu, error)
	PlaceOrder(ctx context.Context, token string, in remote.OrderInput) (remote.OrderReceipt, error)
	Orders(ctx context.Context, token string) ([]remote.OrderSummary, error)
	Order(ctx context.Context, token string, orderID remote.ID) (remote.OrderDetail, error)
}

// Client is the application facade.
type Client struct {
	api      API
	sessions *session.Manager
	cart     *cart.Manager
	logger   *slog.Logger
}

type settings struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	policy     *cart.DeliveryPolicy
	onExpired  func(session.Session)
	sessionOpt []session.Option
}

// Option configures a [Client].
type Option func(*settings)

// WithLogger sets the logger of the facade and both managers.
func WithLogger(logger *slog.Logger) Option { return func(s *settings) { s.logger = logger } }

// WithMetrics records session and cart activity on the given collectors.
func WithMetrics(collectors *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = collectors }
}

// WithDeliveryPolicy overrides the cart's delivery fee and threshold.
func WithDeliveryPolicy(policy cart.DeliveryPolicy) Option {
	return func(s *settings) { s.policy = &policy }
}

// WithExpiryNotice registers the callback run once per expired session.
func WithExpiryNotice(notice func(session.Session)) Option {
	return func(s *settings) { s.onExpired = notice }
}

// WithSessionOptions passes extra options to the session manager.
func WithSessionOptions(options ...session.Option) Option {
	return func(s *settings) { s.sessionOpt = append(s.sessionOpt, options...) }
}

// New wires the managers over store. Call [Client.Start] before use.
func New(store storage.Store, api API, options ...Option) *Client {
	cfg := settings{}
	for _, option := range options {
		option(&cfg)
	}

	sessionOpts := []session.Option{session.WithMetrics(cfg.metrics)}
	cartOpts := []cart.Option{cart.WithMetrics(cfg.metrics)}
	if cfg.logger != nil {
		sessionOpts = append(sessionOpts, session.WithLogger(cfg.logger))
		cartOpts = append(cartOpts, cart.WithLogger(cfg.logger))
	}
	if cfg.onExpired != nil {
		sessionOpts = append(sessionOpts, session.WithExpiryNotice(cfg.onExpired))
	}
	if cfg.policy != nil {
		cartOpts = append(cartOpts, cart.WithDeliveryPolicy(*cfg.policy))
	}
	sessionOpts = append(sessionOpts, cfg.sessionOpt...)

	return &Client{
		api:      api,
		sessions: session.NewManager(store, sessionOpts...),
		cart:     cart.NewManager(store, cartOpts...),
		logger:   cfg.logger,
	}
}

// # Lifecycle

// Start restores the persisted session and cart.
func (c *Client) Start(ctx context.Context) (session.Restore, error) {
	restore, err := c.sessions.Initialize(ctx)
	if err != nil {
		return restore, err
	}
	if err := c.cart.Load(ctx); err != nil {
		return restore, err
	}

	c.log(ctx).Debug("client_started",
		slog.String("session", restore.String()),
		slog.Int("cart_units", c.cart.Count()),
	)
	return restore, nil
}

// Close disarms the session timer. The store is owned by the caller.
func (c *Client) Close() {
	c.sessions.Close()
}

// Session returns the session manager.
func (c *Client) Session() *session.Manager { return c.sessions }

// Cart returns the cart manager.
func (c *Client) Cart() *cart.Manager { return c.cart }

// # Accounts

/*
Login authenticates against the API and starts a local session.

Parameters:
  - ctx: context.Context
  - email, password: string

Returns:
  - session.Session: The new session
  - error: VALIDATION_ERROR, UNAUTHORIZED for bad credentials, MALFORMED_TOKEN, or store failures
*/
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	v := &validate.Validator{}
	v.Required("email", email).Email("email", email).Required("password", password)
	if err := v.Err(); err != nil {
		return session.Session{}, err
	}

	result, err := c.api.Login(ctx, email, password)
	if err != nil {
		return session.Session{}, err
	}

	identity := session.Identity{
		UserID: result.User.UserID.String(),
		Name:   result.User.Name,
		Email:  result.User.Email,
		Role:   sec.UserRole(result.User.Role),
	}
	if err := c.sessions.Login(ctx, identity, result.Token); err != nil {
		return session.Session{}, err
	}
	return c.sessions.Current(), nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in remote.RegisterInput) error {
	v := &validate.Validator{}
	v.Required("name", in.Name).
		Required("email", in.Email).
		Email("email", in.Email).
		Required("password", in.Password)
	if in.Role != "" {
		v.OneOf("role", in.Role, string(sec.RoleCustomer), string(sec.RoleOwner))
	}
	if err := v.Err(); err != nil {
		return err
	}
	return c.api.Register(ctx, in)
}

// Logout ends the session. The cart is kept.
func (c *Client) Logout(ctx context.Context) error {
	return c.sessions.Logout(ctx, session.ReasonExplicit)
}

// Profile fetches the account of the current session.
func (c *Client) Profile(ctx context.Context) (remote.Profile, error) {
	token, err := c.token()
	if err != nil {
		return remote.Profile{}, err
	}
	profile, err := c.api.Profile(ctx, token)
	return profile, c.checkAuth(ctx, err)
}

// # Catalog

// Restaurants lists every restaurant.
func (c *Client) Restaurants(ctx context.Context) ([]remote.Restaurant, error) {
	return c.api.Restaurants(ctx)
}

// Menu returns a restaurant with its dishes.
func (c *Client) Menu(ctx context.Context, restaurantID remote.ID) (remote.Menu, error) {
	return c.api.Menu(ctx, restaurantID)
}

// # Cart

/*
AddToCart adds one unit of a dish, priced from the current menu.

Description: A dish missing from the menu yields NOT_FOUND and an unavailable
one VALIDATION_ERROR. A dish from another restaurant is reported through the
result's conflict; pass it to [Client.ReplaceCart] to switch restaurants.

Parameters:
  - ctx: context.Context
  - restaurantID, menuID: remote.ID

Returns:
  - cart.AddResult: Added or conflict
  - error: API, validation, or store failures
*/
func (c *Client) AddToCart(ctx context.Context, restaurantID, menuID remote.ID) (cart.AddResult, error) {
	menu, err := c.api.Menu(ctx, restaurantID)
	if err != nil {
		return cart.AddResult{}, err
	}

	dish, ok := menu.Find(menuID)
	if !ok {
		return cart.AddResult{}, apperr.NotFound("Menu item")
	}
	if !dish.Available {
		return cart.AddResult{}, apperr.ValidationError(dish.Name + " is not available")
	}

	item := cart.Item{
		MenuID:    dish.MenuID.String(),
		Name:      dish.Name,
		UnitPrice: dish.Price,
		ImageRef:  dish.ImageName,
	}
	return c.cart.AddItem(ctx, item, restaurantID.String())
}

// ReplaceCart resolves a conflict by starting over with the conflicting dish.
func (c *Client) ReplaceCart(ctx context.Context, conflict cart.Conflict) error {
	return c.cart.ResolveConflictByReplacing(ctx, conflict.Item, conflict.RestaurantID)
}

// # Orders

// CheckoutInput carries what the cart itself does not know.
// DiscountPercent comes from the promo collaborator, already validated.
type CheckoutInput struct {
	Address         string
	PromoCode       string
	DiscountPercent float64
}

// Checkout is a placed order with the totals shown to the user.
type Checkout struct {
	Receipt remote.OrderReceipt
	Totals  cart.Totals
}

/*
Checkout places the cart as an order and empties the cart.

Description: Requires an active session and a non-empty cart. The cart is
cleared only after the server accepted the order. If that clear fails, the
receipt is still returned together with the error.

Parameters:
  - ctx: context.Context
  - in: CheckoutInput

Returns:
  - Checkout: Receipt and totals
  - error: UNAUTHORIZED, VALIDATION_ERROR, API or store failures
*/
func (c *Client) Checkout(ctx context.Context, in CheckoutInput) (Checkout, error) {
	token, err := c.token()
	if err != nil {
		return Checkout{}, err
	}

	state := c.cart.State()
	if state.IsEmpty() {
		return Checkout{}, apperr.ValidationError("Your cart is empty")
	}

	v := &validate.Validator{}
	v.Range("discount", in.DiscountPercent, 0, 100)
	if err := v.Err(); err != nil {
		return Checkout{}, err
	}

	order := remote.OrderInput{
		RestaurantID: remote.ID(state.RestaurantID),
		Address:      in.Address,
		PromoCode:    in.PromoCode,
	}
	for _, item := range state.Items {
		order.Items = append(order.Items, remote.OrderLine{MenuID: remote.ID(item.MenuID), Quantity: item.Quantity})
	}

	totals := c.cart.Totals(in.DiscountPercent)
	receipt, err := c.api.PlaceOrder(ctx, token, order)
	if err != nil {
		return Checkout{}, c.checkAuth(ctx, err)
	}

	c.log(ctx).Info("order_placed",
		slog.String("order_id", receipt.OrderID.String()),
		slog.String("restaurant_id", state.RestaurantID),
		slog.Float64("total", totals.Total),
	)

	result := Checkout{Receipt: receipt, Totals: totals}
	if err := c.cart.Clear(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// Orders lists the orders of the current account.
func (c *Client) Orders(ctx context.Context) ([]remote.OrderSummary, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	orders, err := c.api.Orders(ctx, token)
	return orders, c.checkAuth(ctx, err)
}

// Order returns one order of the current account.
func (c *Client) Order(ctx context.Context, orderID remote.ID) (remote.OrderDetail, error) {
	token, err := c.token()
	if err != nil {
		return remote.OrderDetail{}, err
	}
	order, err := c.api.Order(ctx, token, orderID)
	return order, c.checkAuth(ctx, err)
}

// # Internals

func (c *Client) token() (string, error) {
	current := c.sessions.Current()
	if !current.IsAuthenticated() {
		return "", apperr.Unauthorized("Please log in first")
	}
	return current.Token, nil
}

// checkAuth ends the session when the server rejected its token.
func (c *Client) checkAuth(ctx context.Context, err error) error {
	if !apperr.HasCode(err, apperr.CodeUnauthorized) {
		return err
	}
	if logoutErr := c.sessions.Logout(ctx, session.ReasonExpired); logoutErr != nil {
		c.log(ctx).Error("session_clear_failed", slog.Any("error", logoutErr))
	}
	return err
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return ctxutil.Logger(ctx)
}
