package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/dkoval/pricewatch/internal/pricing"
)

// maxFreeTextLen keeps the heuristic away from whole-page containers whose
// text happens to include a currency marker.
const maxFreeTextLen = 120

// freeText is the last-resort strategy: find the first element whose visible
// text is short and carries a currency marker, and try to parse that text.
// Only the first candidate is parsed; if it does not contain a usable number
// the strategy gives up rather than wandering the page.
func freeText(c *Context) *Match {
	doc, err := c.Document()
	if err != nil {
		return nil
	}
	var candidate string
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		// Rune count, not bytes: Cyrillic fragments are two bytes per
		// character and would otherwise hit the ceiling at half length.
		if text == "" || utf8.RuneCountInString(text) >= maxFreeTextLen {
			return true
		}
		if !hasCurrencyMarker(text) {
			return true
		}
		candidate = text
		return false
	})
	if candidate == "" {
		return nil
	}
	amount, ok := pricing.Parse(candidate)
	if !ok {
		return nil
	}
	return &Match{Amount: amount, Raw: candidate, Strategy: "free_text"}
}

func hasCurrencyMarker(text string) bool {
	if strings.Contains(text, "₽") {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, "руб") || strings.Contains(lower, "rub")
}
