// Package types provides the numeric value types shared by all trade records.
package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits kept for stored amounts.
const MoneyScale int32 = 2

// NewMoneyFromString parses a decimal amount.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney panics on a malformed literal. Constants and tests only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns a zero amount.
func Zero() Money {
	return decimal.Zero
}

// SumMoney adds all values.
func SumMoney(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// LineAmount returns quantity × rate rounded to MoneyScale.
func LineAmount(q Quantity, rate Money) Money {
	return q.Decimal().Mul(rate).Round(MoneyScale)
}

// Quantity is a fixed-point quantity with 4 decimal places (scale = 1e4),
// stored as a scaled BIGINT so sums stay exact.
type Quantity int64

const QuantityScale int64 = 10_000

// NewQuantity creates a whole-unit quantity.
func NewQuantity(units int64) Quantity {
	return Quantity(units * QuantityScale)
}

// ParseQuantity parses a decimal string such as "12.5". Input with more than
// 4 fractional digits or outside the int64 range is rejected, not rounded.
func ParseQuantity(s string) (Quantity, error) {
	return parseQuantityString(s)
}

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

func (q Quantity) IsZero() bool     { return q == 0 }
func (q Quantity) IsPositive() bool { return q > 0 }
func (q Quantity) IsNegative() bool { return q < 0 }

// Decimal returns q as an exact decimal.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -4)
}

// Display formats q without trailing zeros ("10", "2.5").
func (q Quantity) Display() string {
	return q.Decimal().String()
}

// String returns a decimal string with 4 fractional digits.
func (q Quantity) String() string {
	v := int64(q)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%04d", sign, v/QuantityScale, v%QuantityScale)
}

// Scan implements sql.Scanner for BIGINT and NUMERIC aggregate columns.
func (q *Quantity) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*q = 0
	case int64:
		*q = Quantity(v)
	case int32:
		*q = Quantity(v)
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("scan quantity: %w", err)
		}
		*q = Quantity(n)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("scan quantity: %w", err)
		}
		*q = Quantity(n)
	default:
		return fmt.Errorf("scan quantity: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer; the scaled integer is stored.
func (q Quantity) Value() (driver.Value, error) {
	return int64(q), nil
}

// MarshalJSON encodes Quantity as a JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.Display()), nil
}

// UnmarshalJSON accepts either a JSON number or a string.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	raw := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	parsed, err := parseQuantityString(raw)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// maxQuantityUnits is the largest whole-unit value that still fits once scaled.
const maxQuantityUnits = math.MaxInt64 / QuantityScale

func parseQuantityString(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	if strings.ContainsAny(s, "eE") {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("parse quantity %q: %w", s, err)
		}
		return quantityFromDecimal(s, d)
	}

	raw := s
	sign := int64(1)
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intStr, fracStr, hasDot := strings.Cut(s, ".")
	if (intStr == "" && fracStr == "") || (hasDot && fracStr == "") || !isDigits(intStr) || !isDigits(fracStr) {
		return 0, fmt.Errorf("parse quantity %q: malformed number", raw)
	}
	if len(fracStr) > 4 {
		return 0, fmt.Errorf("parse quantity %q: more than 4 fractional digits", raw)
	}

	var intPart int64
	if intStr != "" {
		n, err := strconv.ParseInt(intStr, 10, 64)
		if err != nil || n > maxQuantityUnits {
			return 0, fmt.Errorf("parse quantity %q: out of range", raw)
		}
		intPart = n
	}

	fracStr += strings.Repeat("0", 4-len(fracStr))
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", raw, err)
	}
	if intPart > (math.MaxInt64-frac)/QuantityScale {
		return 0, fmt.Errorf("parse quantity %q: out of range", raw)
	}

	return Quantity(sign * (intPart*QuantityScale + frac)), nil
}

func quantityFromDecimal(raw string, d decimal.Decimal) (Quantity, error) {
	scaled := d.Shift(4)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("parse quantity %q: more than 4 fractional digits", raw)
	}
	n := scaled.BigInt()
	if !n.IsInt64() {
		return 0, fmt.Errorf("parse quantity %q: out of range", raw)
	}
	return Quantity(n.Int64()), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
