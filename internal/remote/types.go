// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a server identifier. The API emits integers; the client carries them
// as opaque strings and sends numeric ones back as numbers.
type ID string

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("remote: invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits integer-looking ids as numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// # Accounts

// User is the account returned on login.
type User struct {
	UserID ID     `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// LoginResult pairs the account with its bearer token.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// RegisterInput creates an account. Role defaults to customer on the server.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Profile is the account as seen by its own token.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// # Catalog

// Restaurant is one entry of the restaurant list.
type Restaurant struct {
	RestaurantID ID     `json:"restaurant_id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
}

// MenuItem is one dish on a restaurant menu.
type MenuItem struct {
	MenuID      ID      `json:"menu_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
	ImageName   string  `json:"image_name,omitempty"`
}

// Menu is a restaurant with its dishes.
type Menu struct {
	Restaurant
	Items []MenuItem `json:"menus"`
}

// Find returns the dish with the given id.
func (m Menu) Find(menuID ID) (MenuItem, bool) {
	for _, item := range m.Items {
		if item.MenuID == menuID {
			return item, true
		}
	}
	return MenuItem{}, false
}

// # Orders

// OrderLine is one dish and quantity in a new order.
type OrderLine struct {
	MenuID   ID  `json:"menu_id"`
	Quantity int `json:"quantity"`
}

// OrderInput places an order. The server prices it from its own menu.
type OrderInput struct {
	RestaurantID ID          `json:"restaurant_id"`
	Items        []OrderLine `json:"items"`
	Address      string      `json:"address,omitempty"`
	PromoCode    string      `json:"promo_code,omitempty"`
}

// OrderReceipt is the server's answer to a placed order.
type OrderReceipt struct {
	OrderID    ID      `json:"order_id"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
}

// OrderSummary is one row of the order history.
type OrderSummary struct {
	OrderID      ID      `json:"order_id"`
	RestaurantID ID      `json:"restaurant_id"`
	Status       string  `json:"status"`
	TotalPrice   float64 `json:"total_price"`
	OrderDate    string  `json:"order_date"`
}

// OrderDetailItem is one line of a placed order, priced at order time.
type OrderDetailItem struct {
	MenuID       ID      `json:"menu_id"`
	MenuName     string  `json:"menu_name"`
	Quantity     int     `json:"quantity"`
	PricePerItem float64 `json:"price_per_item"`
}

// OrderDetail is a placed order with its lines.
type OrderDetail struct {
	OrderSummary
	Items []OrderDetailItem `json:"items"`
}

// errorBody is the error envelope of every failed call.
type errorBody struct {
	Msg string `json:"msg"`
}
