package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount of USD expressed in cents.
type Money int64

// ErrInvalidAmount is returned when an amount cannot be read as a plain decimal.
var ErrInvalidAmount = errors.New("invalid amount")

const maxWholeDigits = 15

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// Cents returns the raw minor-unit value.
func (m Money) Cents() int64 { return int64(m) }

// Dollars builds an amount from whole dollars and cents.
func Dollars(whole int64, cents int64) Money {
	if whole < 0 {
		return Money(whole*100 - cents)
	}
	return Money(whole*100 + cents)
}

// ParseMoney reads a plain decimal string such as "1250", "1250.5" or "-3.05".
// An empty string reads as zero. More than two fraction digits are rejected rather
// than rounded.
func ParseMoney(raw string) (Money, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if hasDot && len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, raw)
	}
	if len(whole) > maxWholeDigits || !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	var units int64
	if whole != "" {
		parsed, err := strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
		}
		units = parsed * 100
	}
	switch len(frac) {
	case 1:
		units += int64(frac[0]-'0') * 10
	case 2:
		units += int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	}
	if negative {
		units = -units
	}
	return Money(units), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the amount as a plain decimal with two places.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Format renders the amount as US currency, e.g. "$41,400.00".
func (m Money) Format() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + usdPrinter.Sprintf("%d", v/100) + fmt.Sprintf(".%02d", v%100)
}

// MarshalJSON emits the amount as an exact JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, raw)
		}
		raw = unquoted
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
