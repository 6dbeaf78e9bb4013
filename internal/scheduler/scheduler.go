// Package scheduler runs the scan orchestrator on a fixed interval. The
// loop reads its enable flag and interval from a live configuration source
// every cycle and survives any failure of a single run.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dkoval/pricewatch/internal/config"
)

// minInterval bounds outbound request volume even when the configured
// interval is lower.
const minInterval = time.Minute

// Runner triggers one full scan batch.
type Runner interface {
	RunAll(ctx context.Context) (int, error)
}

// Scheduler drives periodic scan batches.
type Scheduler struct {
	source config.Source
	runner Runner
	logger *zap.Logger
}

// New constructs a Scheduler.
func New(source config.Source, runner Runner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{source: source, runner: runner, logger: logger}
}

// Run blocks until ctx is canceled. Each cycle re-reads the parsing
// configuration: when disabled the loop still advances its wait timer on
// the configured interval instead of busy-looping, so re-enabling takes
// effect within one period.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		parsing := s.source.Parsing()
		if parsing.Enabled {
			s.runOnce(ctx)
		}

		timer := time.NewTimer(interval(parsing.IntervalMinutes))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runOnce executes one batch. Errors and panics are logged and swallowed: a
// failed run must not terminate the loop or the host process.
func (s *Scheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scan run panicked", zap.Any("panic", r))
		}
	}()

	saved, err := s.runner.RunAll(ctx)
	if err != nil {
		s.logger.Error("scheduled scan failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled scan finished", zap.Int("saved", saved))
}

func interval(minutes int) time.Duration {
	d := time.Duration(minutes) * time.Minute
	if d < minInterval {
		return minInterval
	}
	return d
}
