package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MinorDigits is the number of decimal digits held by one minor unit (cents).
const MinorDigits = 2

// maxMinorDigits bounds how many integer digits a parsed amount may carry
// before it is shifted into minor units; anything longer can't fit an int64.
const maxMinorDigits = 19

// Money is an exact amount counted in minor currency units.
// The zero value is 0.00.
type Money struct {
	minor int64
}

// NewMoney returns the amount worth minorUnits cents.
func NewMoney(minorUnits int64) Money {
	return Money{minor: minorUnits}
}

// ParseMoney reads user supplied decimal text such as "12", "0.10" or "-3.5".
// Empty, non-numeric, NaN/Inf, sub-cent and out-of-range input all fail
// with ErrInvalidAmount.
func ParseMoney(text string) (Money, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, text)
	}
	if d.IsZero() {
		return Money{}, nil
	}

	// reject huge exponents before materialising the shifted value
	digits := len(d.Abs().Coefficient().Text(10))
	if int64(digits)+int64(d.Exponent())+MinorDigits > maxMinorDigits {
		return Money{}, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, text)
	}

	minor := d.Shift(MinorDigits)
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, text, MinorDigits)
	}

	bi := minor.BigInt()
	if !bi.IsInt64() || bi.Int64() == math.MinInt64 {
		return Money{}, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, text)
	}
	return Money{minor: bi.Int64()}, nil
}

// MustParseMoney is ParseMoney for literals known to be valid. It panics otherwise.
func MustParseMoney(text string) Money {
	m, err := ParseMoney(text)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) MinorUnits() int64  { return m.minor }
func (m Money) IsZero() bool       { return m.minor == 0 }
func (m Money) IsNegative() bool   { return m.minor < 0 }
func (m Money) IsPositive() bool   { return m.minor > 0 }
func (m Money) Neg() Money         { return Money{minor: -m.minor} }
func (m Money) Equal(n Money) bool { return m.minor == n.minor }

// Cmp returns -1, 0 or +1 when m is less than, equal to or greater than n.
func (m Money) Cmp(n Money) int {
	switch {
	case m.minor < n.minor:
		return -1
	case m.minor > n.minor:
		return 1
	}
	return 0
}

// Add returns m+n, or ErrInvalidAmount if the sum does not fit.
func (m Money) Add(n Money) (Money, error) {
	sum := m.minor + n.minor
	if (n.minor > 0 && sum < m.minor) || (n.minor < 0 && sum > m.minor) {
		return Money{}, fmt.Errorf("%w: %s + %s overflows", ErrInvalidAmount, m, n)
	}
	return Money{minor: sum}, nil
}

// Sub returns m-n, or ErrInvalidAmount if the difference does not fit.
func (m Money) Sub(n Money) (Money, error) {
	if n.minor == math.MinInt64 {
		return Money{}, fmt.Errorf("%w: %s - %s overflows", ErrInvalidAmount, m, n)
	}
	return m.Add(n.Neg())
}

// String renders the amount with exactly two decimals, e.g. "-12.30".
func (m Money) String() string {
	return decimal.New(m.minor, -MinorDigits).StringFixed(MinorDigits)
}

// Display formats the amount for humans in the given ISO currency, e.g. "$1,234.50".
// Codes unknown to go-money, or whose minor unit isn't cents, fall back to "1234.50 XXX".
func (m Money) Display(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil || cur.Fraction != MinorDigits {
		if code == "" {
			return m.String()
		}
		return m.String() + " " + code
	}
	return money.New(m.minor, cur.Code).Display()
}

// MarshalJSON encodes the amount as a decimal string so no float ever touches it.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string or an exact JSON number. null leaves m unchanged.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// bare JSON numbers are accepted as long as they are exact
		s = string(data)
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
