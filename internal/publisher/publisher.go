// Package publisher defines the event publishing contract used to notify
// downstream consumers (alerting, analytics) that a scan batch saved
// observations.
package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BatchEvent summarizes one completed scan batch.
type BatchEvent struct {
	RunID      uuid.UUID `json:"run_id"`
	Saved      int       `json:"saved"`
	Links      int       `json:"links"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher pushes batch events to a topic. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Noop discards events; used when no broker is configured.
type Noop struct{}

// Publish does nothing and returns an empty ID.
func (Noop) Publish(_ context.Context, _ string, _ any) (string, error) {
	return "", nil
}
