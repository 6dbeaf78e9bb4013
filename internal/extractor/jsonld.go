package extractor

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/dkoval/pricewatch/internal/pricing"
)

// jsonLD walks embedded structured-data product markup. Each
// application/ld+json block is parsed and searched depth-first, preferring a
// nested "offers" object before any "price" field.
func jsonLD(c *Context) *Match {
	doc, err := c.Document()
	if err != nil {
		return nil
	}
	var match *Match
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var root any
		if err := json.Unmarshal([]byte(s.Text()), &root); err != nil {
			return true
		}
		if amount, raw, ok := findJSONPrice(root); ok && amount.IsPositive() {
			match = &Match{Amount: amount, Raw: raw, Strategy: "json_ld"}
			return false
		}
		return true
	})
	return match
}

// findJSONPrice searches the decoded JSON tree for a usable price value.
func findJSONPrice(node any) (decimal.Decimal, string, bool) {
	switch v := node.(type) {
	case map[string]any:
		if offers, ok := v["offers"]; ok {
			if amount, raw, found := findJSONPrice(offers); found {
				return amount, raw, true
			}
		}
		if price, ok := v["price"]; ok {
			if amount, raw, found := priceValue(price); found {
				return amount, raw, true
			}
		}
		// Decoding loses document order, so the sibling walk goes by
		// sorted key to keep the pick stable across runs.
		keys := make([]string, 0, len(v))
		for k := range v {
			if k == "offers" || k == "price" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if amount, raw, found := findJSONPrice(v[k]); found {
				return amount, raw, true
			}
		}
	case []any:
		for _, child := range v {
			if amount, raw, found := findJSONPrice(child); found {
				return amount, raw, true
			}
		}
	}
	return decimal.Decimal{}, "", false
}

func priceValue(price any) (decimal.Decimal, string, bool) {
	switch v := price.(type) {
	case float64:
		return decimal.NewFromFloat(v), fmt.Sprintf("%v", v), true
	case string:
		if amount, ok := pricing.Parse(v); ok {
			return amount, v, true
		}
	}
	return decimal.Decimal{}, "", false
}
