// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the account type returned by the authentication service.
type UserRole string

const (
	// Places orders from any restaurant
	RoleCustomer UserRole = "customer"

	// Manages restaurants and menus
	RoleOwner UserRole = "owner"
)

// Valid reports whether the role is one the API issues.
func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleOwner
}

// IsOwner reports whether the account manages restaurants.
func (r UserRole) IsOwner() bool {
	return r == RoleOwner
}
