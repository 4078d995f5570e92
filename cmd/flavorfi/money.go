// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// money formats amounts in the configured currency.
type money struct {
	unit    currency.Unit
	printer *message.Printer
}

func newMoney(code string) (money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return money{}, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return money{unit: unit, printer: message.NewPrinter(language.English)}, nil
}

// Format renders v with the currency symbol and the currency's standard scale.
func (m money) Format(v float64) string {
	return m.printer.Sprint(currency.Symbol(m.unit.Amount(v)))
}
