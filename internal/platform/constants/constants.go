// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the FlavorFi client.

It defines storage key names, pricing defaults, and remote API timing that are
shared between the session, cart, and transport layers.

Categories:

  - Storage Taxonomy: Namespaces and logical keys of the persisted snapshots.
  - Pricing: Delivery fee defaults used by the cart totals.
  - Remote API: Timeouts and retry ceilings for the collaborator client.

Using this package keeps key names identical across every storage backend.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "flavorfi"
	AppVersion = "0.1.0-dev"
)

// # Storage Taxonomy

const (
	// NamespaceSession prefixes every key owned by the session manager.
	NamespaceSession = "session:"

	// NamespaceCart prefixes every key owned by the cart manager.
	NamespaceCart = "cart:"

	// KeySessionToken holds the opaque access token.
	KeySessionToken = "token"

	// KeySessionIdentity holds the serialized identity record.
	KeySessionIdentity = "identity"

	// KeyCartItems holds the serialized ordered item list.
	KeyCartItems = "items"

	// KeyCartRestaurant holds the active restaurant identifier.
	KeyCartRestaurant = "restaurant_id"
)

// # Pricing

const (
	// DefaultDeliveryFee is charged when the discounted subtotal does not exceed the threshold.
	DefaultDeliveryFee = 40.0

	// DefaultFreeDeliveryThreshold is the discounted subtotal above which delivery is free.
	DefaultFreeDeliveryThreshold = 300.0

	// DefaultCurrency is the ISO 4217 code used for display.
	DefaultCurrency = "INR"
)

// # Remote API

const (
	// DefaultAPITimeout bounds a single HTTP round trip.
	DefaultAPITimeout = 10 * time.Second

	// DefaultRetryInitialInterval is the first backoff step for idempotent reads.
	DefaultRetryInitialInterval = 200 * time.Millisecond

	// DefaultRetryMaxInterval caps a single backoff step.
	DefaultRetryMaxInterval = 2 * time.Second

	// HeaderRequestID carries the correlation id of every outgoing request.
	HeaderRequestID = "X-Request-ID"
)
