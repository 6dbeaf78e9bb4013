// Package scanner implements the link scan orchestrator: it loads active
// tracked links, resolves each through the fetch-extract pipeline, and
// appends the resulting observations in one batched write. Failures are
// isolated per link; one bad page never aborts the batch.
package scanner

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkoval/pricewatch/internal/archive"
	"github.com/dkoval/pricewatch/internal/metrics"
	"github.com/dkoval/pricewatch/internal/pipeline"
	"github.com/dkoval/pricewatch/internal/pricing"
	"github.com/dkoval/pricewatch/internal/publisher"
	"github.com/dkoval/pricewatch/internal/store"
	"github.com/dkoval/pricewatch/internal/tracking"
)

// DefaultTopic is the event topic for batch summaries.
const DefaultTopic = "pricewatch.scans"

// Resolver is the pipeline contract the scanner depends on.
type Resolver interface {
	Resolve(ctx context.Context, url string, hints []string) pipeline.Resolution
}

// Config controls Scanner behavior.
type Config struct {
	Topic string
}

// Scanner runs scan batches over tracked links.
type Scanner struct {
	store     store.Store
	resolver  Resolver
	publisher publisher.Publisher
	archive   archive.Provider
	logger    *zap.Logger
	cfg       Config

	now   func() time.Time
	newID func() uuid.UUID
}

// New constructs a Scanner. Publisher and archive may be nil; they default
// to no-ops.
func New(
	st store.Store,
	resolver Resolver,
	pub publisher.Publisher,
	arc archive.Provider,
	logger *zap.Logger,
	cfg Config,
) *Scanner {
	if pub == nil {
		pub = publisher.Noop{}
	}
	if arc == nil {
		arc = archive.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	return &Scanner{
		store:     st,
		resolver:  resolver,
		publisher: pub,
		archive:   arc,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}
}

// RunAll scans every active tracked link and returns the number of
// observations saved. Zero is a valid, non-error outcome.
func (s *Scanner) RunAll(ctx context.Context) (int, error) {
	return s.run(ctx, nil)
}

// RunForProduct scans only the links of one product.
func (s *Scanner) RunForProduct(ctx context.Context, productID int64) (int, error) {
	return s.run(ctx, &productID)
}

func (s *Scanner) run(ctx context.Context, productID *int64) (int, error) {
	start := s.now()
	runID := s.newID()

	links, err := s.store.ListActiveLinks(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("list active links: %w", err)
	}

	var batch []tracking.Observation
	for _, link := range links {
		if ctx.Err() != nil {
			s.logger.Warn("scan canceled mid-batch",
				zap.Int("resolved", len(batch)),
				zap.Int("links", len(links)))
			break
		}
		if strings.TrimSpace(link.URL) == "" {
			continue
		}
		if obs, ok := s.scanLink(ctx, link); ok {
			batch = append(batch, obs)
		}
	}

	saved, err := s.save(ctx, batch)
	metrics.ScanCompleted(s.now().Sub(start))
	if err != nil {
		return 0, err
	}
	if saved > 0 {
		s.publishBatch(ctx, publisher.BatchEvent{
			RunID:      runID,
			Saved:      saved,
			Links:      len(links),
			StartedAt:  start,
			FinishedAt: s.now(),
		})
	}
	return saved, nil
}

func (s *Scanner) scanLink(ctx context.Context, link tracking.TrackedLink) (tracking.Observation, bool) {
	res := s.resolveLink(ctx, link)

	switch {
	case res.Blocked:
		s.logger.Warn("shop blocked the fetch",
			zap.String("shop", link.ShopName),
			zap.String("url", link.URL))
		s.archivePage(ctx, link, res)
		return tracking.Observation{}, false
	case !res.Found():
		s.logger.Info("no price found",
			zap.String("shop", link.ShopName),
			zap.String("url", link.URL))
		s.archivePage(ctx, link, res)
		return tracking.Observation{}, false
	}

	price := pricing.New(res.Match.Amount, "")
	if !price.Positive() {
		return tracking.Observation{}, false
	}

	obs := tracking.Observation{
		ID:         s.newID(),
		ProductID:  link.ProductID,
		ShopID:     link.ShopID,
		URL:        link.URL,
		PriceMinor: price.MinorUnits(),
		Currency:   price.Currency,
		Status:     tracking.StatusOK,
		RawText:    res.Match.Raw,
		ObservedAt: s.now(),
	}
	s.logger.Info("price resolved",
		zap.Int64("price_minor", obs.PriceMinor),
		zap.String("currency", obs.Currency),
		zap.String("strategy", res.Match.Strategy),
		zap.String("shop", link.ShopName),
		zap.String("url", link.URL))
	return obs, true
}

// resolveLink shields the batch from a misbehaving page: any panic from
// fetch or extraction is logged with the link's URL and treated as "no
// price found" for that link.
func (s *Scanner) resolveLink(ctx context.Context, link tracking.TrackedLink) (res pipeline.Resolution) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("link resolution panicked",
				zap.String("url", link.URL),
				zap.Any("panic", r))
			res = pipeline.Resolution{}
		}
	}()
	return s.resolver.Resolve(ctx, link.URL, link.Hints())
}

// save persists the accumulated batch in one write. The write runs even
// when the scan was canceled mid-batch: accumulated observations are kept,
// not discarded.
func (s *Scanner) save(ctx context.Context, batch []tracking.Observation) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.store.AppendObservations(context.WithoutCancel(ctx), batch); err != nil {
		return 0, fmt.Errorf("append observations: %w", err)
	}
	metrics.ObservationsSaved(len(batch))
	return len(batch), nil
}

func (s *Scanner) publishBatch(ctx context.Context, event publisher.BatchEvent) {
	if _, err := s.publisher.Publish(context.WithoutCancel(ctx), s.cfg.Topic, event); err != nil {
		s.logger.Warn("publish batch event failed", zap.Error(err))
	}
}

// archivePage snapshots the fetched HTML of blocked and price-less pages so
// operators can inspect what the site served.
func (s *Scanner) archivePage(ctx context.Context, link tracking.TrackedLink, res pipeline.Resolution) {
	if res.Page.HTML == "" {
		return
	}
	sum := sha256.Sum256([]byte(res.Page.HTML))
	key := fmt.Sprintf("%d/%x.html", link.ShopID, sum[:8])
	if err := s.archive.Store(ctx, key, []byte(res.Page.HTML)); err != nil {
		s.logger.Warn("archive snapshot failed",
			zap.String("url", link.URL), zap.Error(err))
	}
}
