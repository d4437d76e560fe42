package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a non-negative decimal amount such as a unit price or
// the cash tendered at checkout.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, NewInvalidInput(fmt.Sprintf("%q is not a decimal amount", s))
	}
	if d.IsNegative() {
		return decimal.Zero, NewInvalidInput(fmt.Sprintf("amount %s must not be negative", d))
	}
	return d, nil
}

// ParseQuantity parses a non-negative integer quantity.
func ParseQuantity(s string) (int64, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, NewInvalidInput(fmt.Sprintf("%q is not a whole quantity", s))
	}
	if q < 0 {
		return 0, NewInvalidInput(fmt.Sprintf("quantity %d must not be negative", q))
	}
	return q, nil
}

// FormatPrice renders a decimal amount in the given ISO 4217 currency.
// Unknown currencies fall back to two fixed decimals followed by the code.
func FormatPrice(d decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return strings.TrimSpace(d.StringFixed(2) + " " + currency)
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}
