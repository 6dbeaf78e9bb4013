// Package headless implements fetcher.Renderer with chromedp and headless
// Chrome. One browser process serves the whole application: it is launched
// lazily on first use, reused across scan batches, and disposed only at
// shutdown. Every Render call gets its own browser context with a distinct
// cookie/storage jar, so sessions never leak across shops.
package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/dkoval/pricewatch/internal/fetcher"
)

// Config controls the behavior of the headless renderer.
type Config struct {
	UserAgent         string
	NavigationTimeout time.Duration
	// SettleDelay is the fixed wait after DOM-ready that lets client-side
	// price widgets populate before the HTML is captured.
	SettleDelay time.Duration
}

// Renderer renders pages in a shared headless Chrome instance.
type Renderer struct {
	cfg Config

	startOnce     sync.Once
	startErr      error
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New creates a Renderer. The browser is not launched until the first
// Render call.
func New(cfg Config) *Renderer {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 1500 * time.Millisecond
	}
	return &Renderer{cfg: cfg}
}

func (r *Renderer) start() error {
	r.startOnce.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", "new"),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("hide-scrollbars", true),
			chromedp.Flag("enable-automation", false),
		)
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			r.startErr = fmt.Errorf("launch browser: %w", err)
			return
		}
		r.allocCancel = allocCancel
		r.browserCtx = browserCtx
		r.browserCancel = browserCancel
	})
	return r.startErr
}

// Render navigates url in a fresh isolated browser context, waits for the
// DOM-ready milestone plus the settle delay, and returns the rendered HTML.
// The context and its tab are disposed on every exit path.
func (r *Renderer) Render(ctx context.Context, url string) (fetcher.Page, error) {
	if err := r.start(); err != nil {
		return fetcher.Page{}, err
	}
	start := time.Now()

	browser := chromedp.FromContext(r.browserCtx).Browser
	exec := cdp.WithExecutor(ctx, browser)

	contextID, err := target.CreateBrowserContext().WithDisposeOnDetach(true).Do(exec)
	if err != nil {
		return fetcher.Page{}, fmt.Errorf("create browser context: %w", err)
	}
	defer func() {
		// Disposal runs against a fresh context: the caller's ctx may
		// already be canceled and the browser context must go regardless.
		cleanup := cdp.WithExecutor(context.Background(), browser)
		_ = target.DisposeBrowserContext(contextID).Do(cleanup)
	}()

	targetID, err := target.CreateTarget("about:blank").WithBrowserContextID(contextID).Do(exec)
	if err != nil {
		return fetcher.Page{}, fmt.Errorf("create target: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx, chromedp.WithTargetID(targetID))
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, r.cfg.NavigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	actions := []chromedp.Action{
		r.userAgentAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.cfg.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return fetcher.Page{}, fmt.Errorf("chromedp run: %w", err)
	}
	if html == "" {
		return fetcher.Page{}, errors.New("empty rendered document")
	}
	return fetcher.Page{
		URL:          url,
		HTML:         html,
		UsedHeadless: true,
		Duration:     time.Since(start),
	}, nil
}

func (r *Renderer) userAgentAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if r.cfg.UserAgent == "" {
			return nil
		}
		if err := emulation.SetUserAgentOverride(r.cfg.UserAgent).Do(ctx); err != nil {
			return fmt.Errorf("set user-agent: %w", err)
		}
		return nil
	})
}

// Close shuts the shared browser down. Safe to call before first use.
func (r *Renderer) Close() error {
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
