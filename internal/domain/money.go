package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// USD is the only currency the catalog serves today.
const USD = "USD"

// Money is a decimal amount plus a currency code. Arithmetic is exact;
// rounding to two places happens only when formatting for display.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ParsePrice converts a catalog display price like "$99.99" or "$2,999.99"
// into Money.
func ParsePrice(s string) (Money, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Money{}, fmt.Errorf("parse price %q: %w", s, err)
	}
	return Money{Amount: amount, Currency: USD}, nil
}

// Add assumes both sides carry the same currency.
func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}
}

func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(qty))), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Display formats for the presentation boundary with two-place rounding.
func (m Money) Display() string {
	return "$" + m.Amount.StringFixed(2)
}
