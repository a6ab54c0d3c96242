// Package core provides the shared value types of the finance engine.
//
// This file contains the Money type, decimal parsing and rupee formatting.
// Amounts are held as integer paise so stored totals add up exactly; the
// projection formulas work in float64 and are rounded back through Round2.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount of rupees stored as whole paise.
type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// ParseDecimalToCents converts a decimal string to paise with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Only
// strictly positive amounts are accepted.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,345") -> 1235, nil
//	ParseDecimalToCents("-1")     -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	cents, err := ParseSignedCents(s)
	if err != nil || cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// maxCents is the largest accepted magnitude in paise.
var maxCents = decimal.NewFromInt(1 << 62)

// ParseSignedCents is ParseDecimalToCents for amounts that may be zero or
// negative, such as budgets and running totals. Amounts beyond ±2^62 paise
// are rejected.
func ParseSignedCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ParseMoney is ParseDecimalToCents wrapped in a Money.
func ParseMoney(s string) (Money, error) {
	c, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: c}, nil
}

// MoneyFromFloat rounds f half away from zero to the nearest paisa.
func MoneyFromFloat(f float64) Money {
	return Money{Cents: decimal.NewFromFloat(f).Mul(hundred).Round(0).IntPart()}
}

// Round2 rounds f to two decimal places, half away from zero.
func Round2(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in rupees.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount in rupees as a float64 for the projection formulas.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// MarshalJSON encodes the amount as a rupee number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a rupee amount as a JSON number or string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	cents, err := ParseSignedCents(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

// String renders the amount with Indian digit grouping, e.g. ₹12,34,567.89.
func (m Money) String() string {
	return FormatRupees(m)
}

// FormatRupees formats paise using the Indian numbering system: the last
// three integer digits, then groups of two.
func FormatRupees(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	s := "₹" + groupIndian(whole) + "." + twoDigits(frac)
	if neg {
		return "-" + s
	}
	return s
}

// FormatINR formats a float amount of rupees, rounding to the nearest paisa.
func FormatINR(amount float64) string {
	return FormatRupees(MoneyFromFloat(amount))
}

func groupIndian(n int64) string {
	digits := decimal.NewFromInt(n).String()
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + decimal.NewFromInt(n).String()
	}
	return decimal.NewFromInt(n).String()
}
