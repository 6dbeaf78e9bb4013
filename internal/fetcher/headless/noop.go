package headless

import (
	"context"
	"errors"

	"github.com/dkoval/pricewatch/internal/fetcher"
)

// Noop implements fetcher.Renderer but always reports that headless
// rendering is unavailable, forcing callers onto the HTTP fallback.
type Noop struct{}

// NewNoop creates a new Noop renderer.
func NewNoop() *Noop {
	return &Noop{}
}

// Render returns an error since this is a stub implementation.
func (Noop) Render(_ context.Context, _ string) (fetcher.Page, error) {
	return fetcher.Page{}, errors.New("headless renderer not configured")
}

// Close does nothing.
func (Noop) Close() error { return nil }
