// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles client-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to the store factory and remote client via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Store Drivers

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the FlavorFi client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Persistent Store
	StoreDriver    string `env:"STORE_DRIVER"    envDefault:"sqlite"`
	StorePath      string `env:"STORE_PATH"      envDefault:"./data/flavorfi.db"`
	StoreNamespace string `env:"STORE_NAMESPACE" envDefault:"flavorfi"`
	RedisURL       string `env:"REDIS_URL"`
	DatabaseURL    string `env:"DATABASE_URL"`

	// Remote API
	APIBaseURL    string        `env:"API_BASE_URL"    envDefault:"http://localhost:5000"`
	APITimeout    time.Duration `env:"API_TIMEOUT"     envDefault:"10s"`
	APIMaxRetries uint64        `env:"API_MAX_RETRIES" envDefault:"3"`
	APIRateLimit  float64       `env:"API_RATE_LIMIT"  envDefault:"5"`

	// Pricing
	DeliveryFee           float64 `env:"DELIVERY_FEE"            envDefault:"40"`
	FreeDeliveryThreshold float64 `env:"FREE_DELIVERY_THRESHOLD" envDefault:"300"`
	Currency              string  `env:"CURRENCY"                envDefault:"INR"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and checks
// driver-specific requirements.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverFile, DriverSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("config: STORE_PATH is required for the %s driver", c.StoreDriver)
		}
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: REDIS_URL is required for the redis driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.DeliveryFee < 0 || c.FreeDeliveryThreshold < 0 {
		return fmt.Errorf("config: pricing values must not be negative")
	}

	if c.APIRateLimit <= 0 {
		return fmt.Errorf("config: API_RATE_LIMIT must be positive")
	}

	return nil
}

// IsDevelopment reports whether the client is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
