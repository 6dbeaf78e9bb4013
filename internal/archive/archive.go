// Package archive stores page snapshots for offline selector debugging.
// When extraction misses or a page is blocked, the fetched HTML is archived
// so operators can inspect what the site actually served.
package archive

import "context"

// Provider persists one HTML snapshot under a key.
type Provider interface {
	Store(ctx context.Context, key string, html []byte) error
}

// Noop discards snapshots; used when no archive bucket is configured.
type Noop struct{}

// Store does nothing.
func (Noop) Store(_ context.Context, _ string, _ []byte) error { return nil }
