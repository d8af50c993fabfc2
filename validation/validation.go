// Package validation collects advisory problems found in invoice input.
// Nothing here blocks rendering; callers report the violations and carry on
// with the defaulted values.
package validation

import (
	"errors"
	"sort"
	"strings"

	"github.com/diewo77/gst-invoices/internal/money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Fields returns the offending field names in sorted order.
func (v Violations) Fields() []string {
	out := make([]string, 0, len(v))
	for f := range v {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Strings formats each violation as "field: code", sorted by field.
func (v Violations) Strings() []string {
	out := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		out = append(out, f+": "+v[f])
	}
	return out
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Number flags text that is present but does not parse as a decimal, or
// parses beyond the accepted magnitude.
func Number(field, raw string, v Violations) {
	switch _, err := money.ParseStrict(raw); {
	case errors.Is(err, money.ErrOutOfRange):
		v[field] = "out_of_range"
	case err != nil:
		v[field] = "not_a_number"
	}
}

// NonNegative flags a parsable number below zero.
func NonNegative(field, raw string, v Violations) {
	d, err := money.ParseStrict(raw)
	if err == nil && d.IsNegative() {
		v[field] = "negative"
	}
}

// Percent flags a parsable rate outside 0..100.
func Percent(field, raw string, v Violations) {
	d, err := money.ParseStrict(raw)
	if err != nil {
		Number(field, raw, v)
		return
	}
	if d.IsNegative() || d.GreaterThan(hundred) {
		v[field] = "out_of_range"
	}
}
