// Package pricing holds the money value type and the price text parsing
// primitive shared by all extraction strategies.
package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when a page gives no currency information.
const DefaultCurrency = "RUB"

// Price is a decimal amount with a currency code. It is a transient value:
// observations persist it as an integer count of minor units.
type Price struct {
	Amount   decimal.Decimal
	Currency string
}

// New builds a Price, defaulting the currency when empty.
func New(amount decimal.Decimal, currency string) Price {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Price{Amount: amount, Currency: currency}
}

// Positive reports whether the amount is strictly greater than zero.
func (p Price) Positive() bool {
	return p.Amount.IsPositive()
}

// MinorUnits converts the amount to minor currency units (kopecks, cents),
// rounding half away from zero.
func (p Price) MinorUnits() int64 {
	return p.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// priceRx matches the first digit run with optional space/NBSP thousands
// grouping and an optional 1-2 digit fractional part after '.' or ','.
var priceRx = regexp.MustCompile(`\d[\d \x{00A0}]*([.,]\d{1,2})?`)

var groupingReplacer = strings.NewReplacer(" ", "", " ", "", ",", ".")

// Parse extracts the first price-like number from arbitrary text.
// Grouping characters are stripped and the decimal separator normalized to
// '.' before an invariant decimal parse. Unparsable text yields ok=false,
// never an error.
func Parse(s string) (decimal.Decimal, bool) {
	m := priceRx.FindString(s)
	if m == "" {
		return decimal.Decimal{}, false
	}
	num := groupingReplacer.Replace(m)
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
