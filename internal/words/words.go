// Package words spells rupee amounts in English using the Indian numbering
// system (crore, lakh, thousand).
package words

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Currency prefixes every phrase.
	Currency = "Indian Rupees"
	// MinorUnit names the fractional part.
	MinorUnit = "Paise"
)

const (
	crore    = 10000000
	lakh     = 100000
	thousand = 1000
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// Amount returns the amount as a currency phrase, for example
// "Indian Rupees One Lakh and Fifty Paise Only". Negative amounts are not
// meaningful on an invoice; their absolute value is spelled.
func Amount(amount decimal.Decimal) string {
	d := amount.Abs().Round(2)
	rupees := d.Truncate(0)
	paise := d.Sub(rupees).Shift(2).IntPart()

	var b strings.Builder
	b.WriteString(Currency)
	b.WriteByte(' ')
	b.WriteString(spell(rupees.BigInt()))
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(Integer(paise))
		b.WriteByte(' ')
		b.WriteString(MinorUnit)
	}
	b.WriteString(" Only")
	return b.String()
}

// Integer spells a non-negative integer, "Zero" for 0.
func Integer(n int64) string {
	if n <= 0 {
		return "Zero"
	}
	return expand(n)
}

var bigCrore = big.NewInt(crore)

// spell is Integer for arbitrarily large values. Everything above the crore
// group is itself spelled in crores, as expand does.
func spell(n *big.Int) string {
	if n.Sign() <= 0 {
		return "Zero"
	}
	if n.IsInt64() {
		return expand(n.Int64())
	}
	q, r := new(big.Int).QuoRem(n, bigCrore, new(big.Int))
	out := spell(q) + " Crore"
	if r.Sign() > 0 {
		out += " " + expand(r.Int64())
	}
	return out
}

func expand(n int64) string {
	var parts []string
	if n >= crore {
		parts = append(parts, expand(n/crore), "Crore")
		n %= crore
	}
	if n >= lakh {
		parts = append(parts, belowThousand(n/lakh), "Lakh")
		n %= lakh
	}
	if n >= thousand {
		parts = append(parts, belowThousand(n/thousand), "Thousand")
		n %= thousand
	}
	if n > 0 {
		parts = append(parts, belowThousand(n))
	}
	return strings.Join(parts, " ")
}

// belowThousand spells 1..999.
func belowThousand(n int64) string {
	switch {
	case n == 0:
		return ""
	case n < 20:
		return ones[n]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " " + ones[n%10]
	default:
		if n%100 == 0 {
			return ones[n/100] + " Hundred"
		}
		return ones[n/100] + " Hundred " + belowThousand(n%100)
	}
}
