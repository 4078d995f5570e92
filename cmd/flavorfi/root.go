// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/taibuivan/flavorfi/internal/app"
	"github.com/taibuivan/flavorfi/internal/cart"
	"github.com/taibuivan/flavorfi/internal/platform/apperr"
	"github.com/taibuivan/flavorfi/internal/platform/config"
	"github.com/taibuivan/flavorfi/internal/platform/constants"
	"github.com/taibuivan/flavorfi/internal/platform/ctxutil"
	"github.com/taibuivan/flavorfi/internal/platform/metrics"
	"github.com/taibuivan/flavorfi/internal/remote"
	"github.com/taibuivan/flavorfi/internal/session"
	"github.com/taibuivan/flavorfi/internal/storage"
	"github.com/taibuivan/flavorfi/pkg/uuidv7"
)

// cli holds what every command needs. It is populated in PersistentPreRunE.
type cli struct {
	cfg    *config.Config
	logger *slog.Logger

	// store is injected by tests; otherwise it is opened per invocation.
	store     storage.Store
	ownsStore bool

	registry *prometheus.Registry
	client   *app.Client
	money    money
}

// run executes one invocation and always releases what it opened, including
// when the command fails. A nil store means "open from cfg".
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, store storage.Store, args []string, stdout, stderr io.Writer) error {
	c := &cli{cfg: cfg, logger: logger, store: store}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if stopErr := c.stop(); err == nil {
		err = stopErr
	}
	return err
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Order food from FlavorFi restaurants",
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.start(cmd)
		},
	}

	root.AddCommand(
		newLoginCmd(c),
		newRegisterCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newRestaurantsCmd(c),
		newMenuCmd(c),
		newCartCmd(c),
		newCheckoutCmd(c),
		newOrdersCmd(c),
	)
	return root
}

// start opens the store and restores session and cart.
func (c *cli) start(cmd *cobra.Command) error {
	ctx := ctxutil.WithLogger(cmd.Context(), c.logger)
	ctx = ctxutil.WithRequestID(ctx, uuidv7.New())
	cmd.SetContext(ctx)

	var err error
	if c.money, err = newMoney(c.cfg.Currency); err != nil {
		return err
	}

	if c.store == nil {
		if c.store, err = storage.Open(ctx, c.cfg, c.logger); err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		c.ownsStore = true
	}

	c.registry = prometheus.NewRegistry()
	api := remote.New(c.cfg.APIBaseURL,
		remote.WithTimeout(c.cfg.APITimeout),
		remote.WithRetries(c.cfg.APIMaxRetries, constants.DefaultRetryInitialInterval, constants.DefaultRetryMaxInterval),
		remote.WithRateLimit(c.cfg.APIRateLimit),
		remote.WithLogger(c.logger),
	)

	stderr := cmd.ErrOrStderr()
	c.client = app.New(c.store, api,
		app.WithLogger(c.logger),
		app.WithMetrics(metrics.New(c.registry)),
		app.WithDeliveryPolicy(cart.DeliveryPolicy{Fee: c.cfg.DeliveryFee, Threshold: c.cfg.FreeDeliveryThreshold}),
		app.WithExpiryNotice(func(ended session.Session) {
			fmt.Fprintf(stderr, "Your session for %s has expired. Please log in again.\n", ended.Identity.Email)
		}),
	)

	restore, err := c.client.Start(ctx)
	if err != nil {
		return err
	}

	switch restore {
	case session.RestoreExpired:
		fmt.Fprintln(stderr, "Your session has expired. Please log in again.")
	case session.RestoreMalformed:
		fmt.Fprintln(stderr, "The saved session was unreadable and has been cleared.")
	}
	return nil
}

// stop releases the session timer and the store.
func (c *cli) stop() error {
	if c.client != nil {
		c.client.Close()
		c.logMetrics()
	}
	if c.ownsStore {
		c.ownsStore = false
		store := c.store
		c.store = nil
		return store.Close()
	}
	return nil
}

// logMetrics writes the counters of this invocation at debug level.
func (c *cli) logMetrics() {
	families, err := c.registry.Gather()
	if err != nil {
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, label.GetName()+"="+label.GetValue())
			}
			c.logger.Debug("metric",
				slog.String("name", family.GetName()),
				slog.String("labels", strings.Join(labels, ",")),
				slog.Float64("value", metric.GetCounter().GetValue()),
			)
		}
	}
}

// describe renders an error for a terminal user.
func describe(err error) string {
	appErr := apperr.As(err)
	if appErr == nil {
		return err.Error()
	}

	message := appErr.Message
	for _, detail := range appErr.Details {
		message += fmt.Sprintf("\n  %s: %s", detail.Field, detail.Message)
	}
	return message
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
