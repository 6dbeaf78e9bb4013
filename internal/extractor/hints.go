package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/dkoval/pricewatch/internal/pricing"
)

// hintSelectors tries each hint selector in the caller-supplied order and
// returns the first positive parse. Earlier hints win: they are assumed more
// specific for the shop. Meta tags carry their value in the content
// attribute, everything else in text content.
func hintSelectors(c *Context) *Match {
	doc, err := c.Document()
	if err != nil {
		return nil
	}
	for _, sel := range c.hints {
		if strings.TrimSpace(sel) == "" {
			continue
		}
		// Compile instead of Find: hint strings are operator input and a
		// bad selector must not take the whole batch down.
		matcher, err := cascadia.Compile(sel)
		if err != nil {
			continue
		}
		node := doc.FindMatcher(matcher).First()
		if node.Length() == 0 {
			continue
		}
		raw := nodeValue(node)
		amount, ok := pricing.Parse(raw)
		if !ok || !amount.IsPositive() {
			continue
		}
		return &Match{Amount: amount, Raw: raw, Strategy: "hint:" + sel}
	}
	return nil
}

func nodeValue(node *goquery.Selection) string {
	if goquery.NodeName(node) == "meta" {
		content, _ := node.Attr("content")
		return content
	}
	return node.Text()
}
