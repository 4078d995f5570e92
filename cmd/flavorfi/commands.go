// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taibuivan/flavorfi/internal/app"
	"github.com/taibuivan/flavorfi/internal/cart"
	"github.com/taibuivan/flavorfi/internal/remote"
	"github.com/taibuivan/flavorfi/internal/session"
)

// errConflict is returned by "cart add" when the cart belongs to another restaurant.
var errConflict = errors.New("your cart holds items from another restaurant; use --replace to start a new cart")

// # Accounts

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := c.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if !current.IsAuthenticated() {
				return errors.New("the server issued an already expired session")
			}
			printf(cmd.OutOrStdout(), "Logged in as %s (%s). Session valid until %s.\n",
				current.Identity.Name, current.Identity.Role, current.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var in remote.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.client.Register(cmd.Context(), in); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Account created for %s. You can log in now.\n", in.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.Role, "role", "", "customer or owner (default customer)")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session; the cart is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.client.Session().State() != session.StateAuthenticated {
				printf(cmd.OutOrStdout(), "Not logged in.\n")
				return nil
			}
			if err := c.client.Logout(cmd.Context()); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged out.\n")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			current := c.client.Session().Current()
			if !current.IsAuthenticated() {
				printf(out, "Not logged in.\n")
				return nil
			}

			if verify {
				profile, err := c.client.Profile(cmd.Context())
				if err != nil {
					return err
				}
				printf(out, "%s <%s> (%s), confirmed by the server\n", profile.Name, profile.Email, profile.Role)
			} else {
				printf(out, "%s <%s> (%s)\n", current.Identity.Name, current.Identity.Email, current.Identity.Role)
			}
			printf(out, "Session valid until %s\n", current.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check the token against the server")
	return cmd
}

// # Catalog

func newRestaurantsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurants",
		Short: "List restaurants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			restaurants, err := c.client.Restaurants(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printf(w, "ID\tNAME\tADDRESS\n")
			for _, r := range restaurants {
				printf(w, "%s\t%s\t%s\n", r.RestaurantID, r.Name, r.Address)
			}
			return w.Flush()
		},
	}
}

func newMenuCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "menu <restaurant-id>",
		Short: "Show a restaurant's menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			menu, err := c.client.Menu(cmd.Context(), remote.ID(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printf(out, "%s, %s\n\n", menu.Name, menu.Address)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			printf(w, "ID\tDISH\tPRICE\tSTATUS\n")
			for _, item := range menu.Items {
				status := "available"
				if !item.Available {
					status = "sold out"
				}
				printf(w, "%s\t%s\t%s\t%s\n", item.MenuID, item.Name, c.money.Format(item.Price), status)
			}
			return w.Flush()
		},
	}
}

// # Cart

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
	}

	edit := func(use, short string, apply func(c *cli, cmd *cobra.Command, menuID string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <menu-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := apply(c, cmd, args[0]); err != nil {
					return err
				}
				return c.printCart(cmd, 0)
			},
		}
	}

	cmd.AddCommand(
		newCartShowCmd(c),
		newCartAddCmd(c),
		edit("inc", "Add one unit of a dish already in the cart", func(c *cli, cmd *cobra.Command, id string) error {
			return c.client.Cart().IncreaseQuantity(cmd.Context(), id)
		}),
		edit("dec", "Remove one unit of a dish", func(c *cli, cmd *cobra.Command, id string) error {
			return c.client.Cart().DecreaseQuantity(cmd.Context(), id)
		}),
		edit("remove", "Remove a dish entirely", func(c *cli, cmd *cobra.Command, id string) error {
			return c.client.Cart().RemoveItem(cmd.Context(), id)
		}),
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.client.Cart().Clear(cmd.Context()); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Cart cleared.\n")
				return nil
			},
		},
	)
	return cmd
}

func newCartShowCmd(c *cli) *cobra.Command {
	var discount float64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cart and its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printCart(cmd, discount)
		},
	}

	cmd.Flags().Float64Var(&discount, "discount", 0, "discount percent from a validated promo code")
	return cmd
}

func newCartAddCmd(c *cli) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "add <restaurant-id> <menu-id>",
		Short: "Add one unit of a dish",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			result, err := c.client.AddToCart(ctx, remote.ID(args[0]), remote.ID(args[1]))
			if err != nil {
				return err
			}

			if result.Outcome == cart.OutcomeConflict {
				if !replace {
					printf(cmd.ErrOrStderr(), "Cart belongs to restaurant %s; %s is from restaurant %s.\n",
						result.Conflict.ActiveRestaurantID, result.Conflict.Item.Name, result.Conflict.RestaurantID)
					return errConflict
				}
				if err := c.client.ReplaceCart(ctx, *result.Conflict); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "Started a new cart.\n")
			}
			return c.printCart(cmd, 0)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "discard a cart from another restaurant")
	return cmd
}

// printCart writes the cart lines and totals.
func (c *cli) printCart(cmd *cobra.Command, discount float64) error {
	out := cmd.OutOrStdout()
	state := c.client.Cart().State()
	if state.IsEmpty() {
		printf(out, "Your cart is empty.\n")
		return nil
	}

	printf(out, "Restaurant %s\n", state.RestaurantID)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	printf(w, "ID\tDISH\tQTY\tPRICE\n")
	for _, item := range state.Items {
		printf(w, "%s\t%s\t%d\t%s\n", item.MenuID, item.Name, item.Quantity, c.money.Format(item.UnitPrice*float64(item.Quantity)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c.printTotals(cmd, c.client.Cart().Totals(discount))
	return nil
}

func (c *cli) printTotals(cmd *cobra.Command, totals cart.Totals) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	printf(w, "Subtotal\t%s\t\n", c.money.Format(totals.Subtotal))
	if totals.Discount > 0 {
		printf(w, "Discount\t-%s\t\n", c.money.Format(totals.Discount))
	}
	printf(w, "Delivery\t%s\t\n", c.money.Format(totals.DeliveryFee))
	printf(w, "Total\t%s\t\n", c.money.Format(totals.Total))
	_ = w.Flush()
}

// # Orders

func newCheckoutCmd(c *cli) *cobra.Command {
	var in app.CheckoutInput

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place the cart as an order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := c.client.Checkout(cmd.Context(), in)
			if result.Receipt.OrderID != "" {
				printf(cmd.OutOrStdout(), "Order %s placed (%s).\n", result.Receipt.OrderID, result.Receipt.Status)
				c.printTotals(cmd, result.Totals)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&in.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&in.PromoCode, "promo", "", "promo code")
	cmd.Flags().Float64Var(&in.DiscountPercent, "discount", 0, "discount percent granted for the promo code")
	return cmd
}

func newOrdersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "orders [order-id]",
		Short: "List your orders, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				order, err := c.client.Order(cmd.Context(), remote.ID(args[0]))
				if err != nil {
					return err
				}
				printf(out, "Order %s from restaurant %s: %s, placed %s\n",
					order.OrderID, order.RestaurantID, order.Status, order.OrderDate)
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				printf(w, "DISH\tQTY\tEACH\n")
				for _, item := range order.Items {
					name := item.MenuName
					if name == "" {
						name = fmt.Sprintf("#%s", item.MenuID)
					}
					printf(w, "%s\t%d\t%s\n", name, item.Quantity, c.money.Format(item.PricePerItem))
				}
				printf(w, "TOTAL\t\t%s\n", c.money.Format(order.TotalPrice))
				return w.Flush()
			}

			orders, err := c.client.Orders(cmd.Context())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				printf(out, "No orders yet.\n")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			printf(w, "ID\tRESTAURANT\tSTATUS\tTOTAL\tDATE\n")
			for _, o := range orders {
				printf(w, "%s\t%s\t%s\t%s\t%s\n", o.OrderID, o.RestaurantID, o.Status, c.money.Format(o.TotalPrice), o.OrderDate)
			}
			return w.Flush()
		},
	}
}
