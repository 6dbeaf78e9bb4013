// Package fetcher defines the page retrieval contracts shared by the
// headless renderer and the plain HTTP fallback.
package fetcher

import (
	"context"
	"time"
)

// Page is raw HTML obtained for a URL, with the mode that produced it.
type Page struct {
	URL          string
	HTML         string
	UsedHeadless bool
	Duration     time.Duration
}

// Renderer retrieves a fully rendered page via an external browser engine.
// Implementations must close any browser resources they open on every exit
// path, including cancellation.
type Renderer interface {
	Render(ctx context.Context, url string) (Page, error)
	Close() error
}
