// Package gcs implements the snapshot archive on Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
)

// Provider writes snapshots into a GCS bucket under a fixed prefix.
type Provider struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a Provider for the given bucket.
func New(ctx context.Context, bucket, prefix string) (*Provider, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Provider{client: client, bucket: bucket, prefix: prefix}, nil
}

// Store uploads html under <prefix>/<key>.
func (p *Provider) Store(ctx context.Context, key string, html []byte) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("archive provider is not configured")
	}
	object := p.client.Bucket(p.bucket).Object(path.Join(p.prefix, key))
	w := object.NewWriter(ctx)
	w.ContentType = "text/html; charset=utf-8"
	if _, err := w.Write(html); err != nil {
		_ = w.Close()
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize snapshot %s: %w", key, err)
	}
	return nil
}

// Close releases the storage client.
func (p *Provider) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close storage client: %w", err)
	}
	return nil
}
