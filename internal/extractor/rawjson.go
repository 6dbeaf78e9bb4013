package extractor

import (
	"regexp"

	"github.com/dkoval/pricewatch/internal/pricing"
)

// jsonPriceRx finds a "price" key in inline JSON state blobs without paying
// for a full parse. The value may be quoted or bare.
var jsonPriceRx = regexp.MustCompile(`(?i)"price"\s*:\s*"?(\d[\d \x{00A0}]*([.,]\d{1,2})?)"?`)

// rawJSONPrice scans the raw HTML text for a "price": key before any DOM
// parsing happens.
func rawJSONPrice(c *Context) *Match {
	m := jsonPriceRx.FindStringSubmatch(c.html)
	if m == nil {
		return nil
	}
	amount, ok := pricing.Parse(m[1])
	if !ok {
		return nil
	}
	return &Match{Amount: amount, Raw: m[1], Strategy: "raw_json"}
}
