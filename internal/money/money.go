// Package money parses and formats rupee amounts.
//
// Form fields arrive as raw text; any blank, non-numeric or out-of-range
// value (|v| >= 10^15) parses as zero. Formatting follows the en-IN
// locale (1,23,456.78) and stays exact for totals of any size.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Symbol is printed in front of the grand total.
const Symbol = "₹"

// Input bounds. Quantities, rates and percentages on an invoice stay well
// inside them; anything beyond is treated like unparseable text.
const (
	maxInputLen = 64
	maxScale    = 10
	maxExponent = 15
)

var (
	// ErrNotANumber is returned by ParseStrict for text that is not a decimal.
	ErrNotANumber = errors.New("not a number")
	// ErrOutOfRange is returned by ParseStrict for decimals at or beyond Limit.
	ErrOutOfRange = errors.New("number out of range")

	// Limit is the exclusive magnitude bound on parsed input (10^15).
	Limit = decimal.New(1, maxExponent)

	locale  = language.MustParse("en-IN")
	printer = message.NewPrinter(locale)
	hundred = decimal.NewFromInt(100)

	// Below this magnitude float64 still carries every paisa exactly.
	floatExact = decimal.New(1, 13)
)

// Parse converts raw field text into a decimal. Blank, invalid or
// out-of-range input is 0.
func Parse(raw string) decimal.Decimal {
	d, err := ParseStrict(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseStrict is Parse with the failure reason. Blank input is 0 without an
// error. Accepted values have |v| < Limit and at most ten fraction digits
// (extra digits are rounded away).
func ParseStrict(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	if len(s) > maxInputLen {
		return decimal.Zero, ErrOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	// Check the exponent before any comparison: comparing rescales both
	// sides, which costs 10^|exp|.
	exp := d.Exponent()
	switch {
	case exp > maxExponent:
		return decimal.Zero, ErrOutOfRange
	case exp < -maxInputLen:
		// With at most 64 digits of coefficient the value is far below
		// the smallest printed fraction.
		return decimal.Zero, nil
	case exp < -maxScale:
		d = d.Round(maxScale)
	}
	if d.Abs().GreaterThanOrEqual(Limit) {
		return decimal.Zero, ErrOutOfRange
	}
	return d, nil
}

// Percent returns amount × rate / 100.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// Format renders a currency amount with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	// Round half away from zero before handing over a float; the x/text
	// formatter rounds half to even.
	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(floatExact) {
		return groupIndian(d.StringFixed(2))
	}
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// FormatNumber renders a plain number (quantities) with up to three fraction digits.
func FormatNumber(d decimal.Decimal) string {
	d = d.Round(3)
	if d.Abs().GreaterThanOrEqual(floatExact) {
		return groupIndian(d.String())
	}
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(3)))
}

// groupIndian inserts en-IN separators into a plain decimal string: the last
// three integer digits, then pairs (12,34,56,789.00).
func groupIndian(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) > 3 {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		intPart = strings.Join(groups, ",") + "," + tail
	}
	if hasFrac {
		return sign + intPart + "." + frac
	}
	return sign + intPart
}

// FormatRate renders a percentage rate the way it was entered, without padding
// (9, 2.5, 0.25).
func FormatRate(d decimal.Decimal) string {
	return d.String()
}
