package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/pricewatch/internal/fetcher"
)

type stubRenderer struct {
	html  string
	err   error
	calls int
}

func (s *stubRenderer) Render(_ context.Context, url string) (fetcher.Page, error) {
	s.calls++
	if s.err != nil {
		return fetcher.Page{}, s.err
	}
	return fetcher.Page{URL: url, HTML: s.html, UsedHeadless: true}, nil
}

func (s *stubRenderer) Close() error { return nil }

type stubFetcher struct {
	html  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (fetcher.Page, error) {
	s.calls++
	if s.err != nil {
		return fetcher.Page{}, s.err
	}
	return fetcher.Page{URL: url, HTML: s.html}, nil
}

func TestResolvePrefersHeadlessPage(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{html: `<html><body><span class="price">1 290 ₽</span></body></html>`}
	fallback := &stubFetcher{}
	r := NewResolver(renderer, fallback, nil)

	res := r.Resolve(context.Background(), "https://shop.example/item", nil)
	require.True(t, res.Found())
	require.True(t, res.Page.UsedHeadless)
	require.True(t, decimal.RequireFromString("1290").Equal(res.Match.Amount))
	require.Zero(t, fallback.calls)
}

func TestResolveFallsBackToHTTPOnRenderError(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{err: errors.New("chrome unavailable")}
	fallback := &stubFetcher{html: `<html><body><div class="product-price">549,99</div></body></html>`}
	r := NewResolver(renderer, fallback, nil)

	res := r.Resolve(context.Background(), "https://shop.example/item", nil)
	require.True(t, res.Found())
	require.False(t, res.Page.UsedHeadless)
	require.True(t, decimal.RequireFromString("549.99").Equal(res.Match.Amount))
	require.Equal(t, 1, fallback.calls)
}

func TestResolveFallsBackToHTTPOnEmptyRender(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{html: "   "}
	fallback := &stubFetcher{html: `<html><body><span itemprop="price">777</span></body></html>`}
	r := NewResolver(renderer, fallback, nil)

	res := r.Resolve(context.Background(), "https://shop.example/item", nil)
	require.True(t, res.Found())
	require.Equal(t, 1, fallback.calls)
}

func TestResolveBothFetchersFail(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{err: errors.New("render timeout")}
	fallback := &stubFetcher{err: errors.New("connection refused")}
	r := NewResolver(renderer, fallback, nil)

	res := r.Resolve(context.Background(), "https://shop.example/item", nil)
	require.False(t, res.Found())
	require.False(t, res.Blocked)
	require.Empty(t, res.Page.HTML)
}

func TestResolveBlockedPageYieldsNoPrice(t *testing.T) {
	t.Parallel()

	// The blocked page still carries a price-looking node; it must not be
	// extracted from.
	renderer := &stubRenderer{html: `<html><body>
		<div id="id_captcha_frame_div"></div>
		<span class="price">9 999</span>
	</body></html>`}
	r := NewResolver(renderer, &stubFetcher{}, nil)

	res := r.Resolve(context.Background(), "https://shop.example/item", []string{".price"})
	require.True(t, res.Blocked)
	require.False(t, res.Found())
}

func TestResolveRetriesWithDefaultHints(t *testing.T) {
	t.Parallel()

	// The shop hint misses; the second pass over the same HTML with the
	// built-in hints finds the price.
	renderer := &stubRenderer{html: `<html><body><span class="price">2 490 ₽</span></body></html>`}
	r := NewResolver(renderer, &stubFetcher{}, nil)

	res := r.Resolve(context.Background(), "https://shop.example/item", []string{"#nonexistent-node"})
	require.True(t, res.Found())
	require.True(t, decimal.RequireFromString("2490").Equal(res.Match.Amount))
	require.Equal(t, 1, renderer.calls)
}

func TestResolveExtractionMiss(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{html: `<html><body><p>Товар временно отсутствует</p></body></html>`}
	r := NewResolver(renderer, &stubFetcher{}, nil)

	res := r.Resolve(context.Background(), "https://shop.example/item", nil)
	require.False(t, res.Found())
	require.False(t, res.Blocked)
	require.NotEmpty(t, res.Page.HTML)
}
