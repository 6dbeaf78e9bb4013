// Package pipeline composes page fetching and price extraction into one
// resolve operation with internal fallback ordering: headless render first,
// plain HTTP second, shop hints first, default hints second.
package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dkoval/pricewatch/internal/extractor"
	"github.com/dkoval/pricewatch/internal/fetcher"
	"github.com/dkoval/pricewatch/internal/metrics"
)

// PageFetcher is the plain HTTP fallback contract.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (fetcher.Page, error)
}

// Resolution is the outcome of one resolve call. A nil Match with
// Blocked=false means the page was fetched but no strategy found a price;
// that is a valid outcome, not an error.
type Resolution struct {
	Match   *extractor.Match
	Page    fetcher.Page
	Blocked bool
}

// Found reports whether a price was resolved.
func (r Resolution) Found() bool {
	return r.Match != nil
}

// Resolver turns a URL plus extraction hints into a price.
type Resolver struct {
	renderer fetcher.Renderer
	fallback PageFetcher
	logger   *zap.Logger
}

// NewResolver builds a Resolver.
func NewResolver(renderer fetcher.Renderer, fallback PageFetcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{renderer: renderer, fallback: fallback, logger: logger}
}

// Resolve fetches url once (headless, else HTTP) and runs extraction over
// whatever HTML was obtained. Shop hints are tried first; when they yield
// nothing, a second extraction pass runs with the built-in default hints
// over the already-fetched HTML. Fetch failures and blocked pages recover
// locally to "no price"; Resolve never fails hard on a bad page.
func (r *Resolver) Resolve(ctx context.Context, url string, hints []string) Resolution {
	page, ok := r.fetch(ctx, url)
	if !ok {
		return Resolution{}
	}

	if fetcher.IsBlocked(page.HTML) {
		// Distinct from an extraction miss: the site blocked us, the page
		// carries no real content.
		metrics.PageBlocked()
		r.logger.Warn("anti-bot page detected",
			zap.String("url", url),
			zap.Bool("headless", page.UsedHeadless))
		return Resolution{Page: page, Blocked: true}
	}

	match := extractor.Extract(page.HTML, effectiveHints(hints))
	if match == nil && len(hints) > 0 {
		match = extractor.Extract(page.HTML, extractor.DefaultHints)
	}
	if match == nil {
		metrics.ExtractionMiss()
		return Resolution{Page: page}
	}
	metrics.PriceFound(match.Strategy)
	return Resolution{Match: match, Page: page}
}

func (r *Resolver) fetch(ctx context.Context, url string) (fetcher.Page, bool) {
	page, err := r.renderer.Render(ctx, url)
	if err != nil || strings.TrimSpace(page.HTML) == "" {
		if err != nil {
			r.logger.Debug("headless render failed, falling back to http",
				zap.String("url", url), zap.Error(err))
		}
		page, err = r.fallback.Fetch(ctx, url)
		if err != nil {
			r.logger.Warn("page fetch failed",
				zap.String("url", url), zap.Error(err))
			return fetcher.Page{}, false
		}
	}
	mode := "http"
	if page.UsedHeadless {
		mode = "headless"
	}
	metrics.PageFetched(mode)
	return page, true
}

func effectiveHints(hints []string) []string {
	if len(hints) == 0 {
		return extractor.DefaultHints
	}
	return hints
}
