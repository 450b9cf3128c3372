package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity represents an integer count of parts on a line item
type Quantity int64

// Money is a decimal monetary amount. It encodes as a bare JSON number.
type Money struct {
	decimal.Decimal
}

// Zero is the zero amount
var Zero = Money{decimal.Zero}

// NewMoney wraps a decimal value
func NewMoney(d decimal.Decimal) Money {
	return Money{d}
}

// MoneyFromFloat converts a float amount
func MoneyFromFloat(f float64) Money {
	return Money{decimal.NewFromFloat(f)}
}

// MustMoney parses a literal amount and panics on failure. Intended for tests and fixtures.
func MustMoney(s string) Money {
	return Money{decimal.RequireFromString(s)}
}

// Fixed formats the amount with two decimal places
func (m Money) Fixed() string {
	return m.StringFixed(2)
}

// Currency formats the amount as a dollar string
func (m Money) Currency() string {
	return "$" + m.StringFixed(2)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null. Anything else decodes to zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	*m, _ = DecodeMoney(data, Zero)
	return nil
}

// MarshalJSON implements json.Marshaler
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(q), 10)), nil
}

// UnmarshalJSON accepts integers, floats (truncated) and numeric strings.
// Anything else decodes to zero.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q, _ = DecodeQuantity(data, 0)
	return nil
}

// DefaultQuantity replaces a blank or invalid quantity in user input and imports
const DefaultQuantity Quantity = 1

// ParseQuantity parses user input as a non-negative integer quantity. On
// failure def is returned and coerced is true.
func ParseQuantity(raw string, def Quantity) (value Quantity, coerced bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return def, true
	}
	return Quantity(n), false
}

// ParseMoney parses user input as a non-negative decimal amount. On failure
// def is returned and coerced is true.
func ParseMoney(raw string, def Money) (value Money, coerced bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return def, true
	}
	return Money{d}, false
}

// DecodeMoney decodes a JSON number or numeric string. Null, malformed and
// negative values yield def with coerced set.
func DecodeMoney(data []byte, def Money) (value Money, coerced bool) {
	raw, ok := jsonScalar(data)
	if !ok {
		return def, true
	}
	return ParseMoney(raw, def)
}

// DecodeQuantity decodes a JSON integer, float (truncated toward zero) or
// numeric string. Null, malformed and negative values yield def with coerced set.
func DecodeQuantity(data []byte, def Quantity) (value Quantity, coerced bool) {
	raw, ok := jsonScalar(data)
	if !ok {
		return def, true
	}
	if q, coerced := ParseQuantity(raw, def); !coerced {
		return q, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return def, true
	}
	return Quantity(d.IntPart()), false
}

// jsonScalar unwraps a JSON string or returns a bare literal as text
func jsonScalar(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false
	}
	if data[0] != '"' {
		return string(data), true
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// String implements fmt.Stringer
func (q Quantity) String() string {
	return fmt.Sprintf("%d", int64(q))
}
