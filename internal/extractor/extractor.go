// Package extractor resolves a price from retail page HTML.
//
// Retail pages have no common schema, so extraction runs a fixed chain of
// strategies in priority order: a cheap regex scan over the raw HTML, a
// hint-driven DOM scan, embedded JSON-LD product markup, and finally a
// free-text heuristic over short currency-marked fragments. The first
// strictly positive price wins; zero or negative parses are treated as
// invalid and the chain moves on.
package extractor

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// DefaultHints is the built-in selector list used when a shop supplies no
// hints of its own. Metadata selectors come first: they are less likely to
// point at a crossed-out "old price" than styled markup.
var DefaultHints = []string{
	"meta[itemprop='price']",
	"meta[property='product:price:amount']",
	"meta[property='og:price:amount']",
	"[itemprop='price']",
	".product-price__current",
	".product-price",
	".product__price",
	".price",
	".price__current",
	".current-price",
	".card-price",
	".new-price",
	".sale-price",
}

// Match is a successful extraction: the parsed amount, the raw page text it
// came from, and the name of the strategy that found it.
type Match struct {
	Amount   decimal.Decimal
	Raw      string
	Strategy string
}

// Strategy inspects the page context and returns a match or nil. Strategies
// never fail hard: a page they cannot read is simply not a match.
type Strategy func(*Context) *Match

// Context carries the page through the strategy chain. The DOM is parsed at
// most once, on first use.
type Context struct {
	html  string
	hints []string

	docOnce sync.Once
	doc     *goquery.Document
	docErr  error
}

// Document parses the HTML into a queryable DOM, memoizing the result.
func (c *Context) Document() (*goquery.Document, error) {
	c.docOnce.Do(func() {
		c.doc, c.docErr = goquery.NewDocumentFromReader(strings.NewReader(c.html))
	})
	return c.doc, c.docErr
}

// chain is the extraction order. Earlier strategies are cheaper or more
// trustworthy than later ones.
var chain = []Strategy{
	rawJSONPrice,
	hintSelectors,
	jsonLD,
	freeText,
}

// Extract runs the strategy chain over html using the caller-supplied hints
// and returns the first strictly positive match, or nil when no strategy
// finds a price. A miss is a valid outcome, not an error.
func Extract(html string, hints []string) *Match {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	ctx := &Context{html: html, hints: hints}
	for _, strategy := range chain {
		if m := strategy(ctx); m != nil && m.Amount.IsPositive() {
			return m
		}
	}
	return nil
}
