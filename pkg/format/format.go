// Package format renders money and dates the way Brazilian reports print them.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "02/01/2006"

// Currency renders d with two decimals, "." thousands and "," decimal separators.
func Currency(d decimal.Decimal) string {
	fixed := d.Round(2).StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + "," + frac
	if negative && !d.Round(2).IsZero() {
		out = "-" + out
	}
	return out
}

// BRL prefixes Currency with the real symbol.
func BRL(d decimal.Decimal) string {
	return "R$ " + Currency(d)
}

// Date renders t as day/month/year; the zero time renders empty.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
