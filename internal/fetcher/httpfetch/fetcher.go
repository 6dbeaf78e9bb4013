// Package httpfetch implements the plain HTTP fallback fetch using the
// Colly collector. It is used when the headless renderer is unavailable or
// fails to produce content.
package httpfetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/dkoval/pricewatch/internal/fetcher"
)

// DefaultUserAgent mimics a desktop browser; several shops serve a stripped
// page to anything that identifies as a bot.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X) AppleWebKit/537.36 (KHTML, like Gecko) Chrome Safari"

const (
	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguageHeader = "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7"
	acceptEncodingHeader = "gzip, deflate, br"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs single-page GET requests via Colly.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())
	return &Fetcher{cfg: cfg, baseCollector: c}
}

// Fetch executes one GET with browser-like headers and returns the decoded
// page text. The response body is decompressed according to
// Content-Encoding (gzip, deflate, brotli) and decoded as UTF-8 with
// byte-order-mark sniffing.
func (f *Fetcher) Fetch(ctx context.Context, url string) (fetcher.Page, error) {
	var (
		rawBody  []byte
		encoding string
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
		r.Headers.Set("Accept-Language", acceptLanguageHeader)
		r.Headers.Set("Accept-Encoding", acceptEncodingHeader)
	})
	collector.OnResponse(func(r *colly.Response) {
		rawBody = append([]byte(nil), r.Body...)
		encoding = r.Headers.Get("Content-Encoding")
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := f.runCollector(ctx, collector, url, &fetchErr); err != nil {
		return fetcher.Page{}, err
	}
	if len(rawBody) == 0 {
		return fetcher.Page{}, fmt.Errorf("empty response body for %s", url)
	}

	decoded, err := decompress(rawBody, encoding)
	if err != nil {
		return fetcher.Page{}, fmt.Errorf("decompress %q body: %w", encoding, err)
	}
	text, err := decodeText(decoded)
	if err != nil {
		return fetcher.Page{}, fmt.Errorf("decode body text: %w", err)
	}
	return fetcher.Page{
		URL:      url,
		HTML:     text,
		Duration: time.Since(start),
	}, nil
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("http fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
