// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate checks caller input before the session or cart changes,
// so a rejected request never leaves a half-applied mutation behind.
//
// Rules append to one Validator and Err folds every failure into a single
// VALIDATION_ERROR whose details name the offending fields.
package validate

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/taibuivan/flavorfi/internal/platform/apperr"
)

// Validator accumulates field failures. Use a fresh one per operation; it is
// not safe for concurrent use.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails on blank values.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// Email fails when value is not a single address. Blank values are left to
// [Validator.Required].
func (v *Validator) Email(field, value string) *Validator {
	if value == "" {
		return v
	}
	if addr, err := mail.ParseAddress(value); err != nil || addr.Address != value {
		v.add(field, "Must be a valid email address")
	}
	return v
}

// NonNegative fails on prices and amounts below zero.
func (v *Validator) NonNegative(field string, value float64) *Validator {
	if value < 0 {
		v.add(field, "Must not be negative")
	}
	return v
}

// Range fails when value falls outside [lo, hi].
func (v *Validator) Range(field string, value, lo, hi float64) *Validator {
	if value < lo || value > hi {
		v.add(field, fmt.Sprintf("Must be between %s and %s", trim(lo), trim(hi)))
	}
	return v
}

// OneOf fails when value is not one of allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, candidate := range allowed {
		if value == candidate {
			return v
		}
	}
	v.add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// HasErrors reports whether any rule failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns nil when every rule passed.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError("Please check your input", v.errs...)
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

func trim(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
