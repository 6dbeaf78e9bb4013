// Package metrics exposes Prometheus collectors for the price tracking
// service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal     *prometheus.CounterVec
	blockedPagesTotal     prometheus.Counter
	pricesFoundTotal      *prometheus.CounterVec
	extractionMissesTotal prometheus.Counter
	observationsSaved     prometheus.Counter
	scanDurationSeconds   prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricewatch_pages_fetched_total",
				Help: "Total number of pages fetched, labeled by fetch mode.",
			},
			[]string{"mode"},
		)

		blockedPagesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pricewatch_blocked_pages_total",
				Help: "Total number of fetches that hit an anti-bot wall.",
			},
		)

		pricesFoundTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricewatch_prices_found_total",
				Help: "Total number of prices resolved, labeled by extraction strategy.",
			},
			[]string{"strategy"},
		)

		extractionMissesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pricewatch_extraction_misses_total",
				Help: "Total number of fetched pages where no strategy found a price.",
			},
		)

		observationsSaved = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pricewatch_observations_saved_total",
				Help: "Total number of price observations persisted.",
			},
		)

		scanDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pricewatch_scan_duration_seconds",
				Help:    "Duration of full scan batches.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		)
	})
}

// PageFetched records a completed fetch in the given mode ("headless" or
// "http").
func PageFetched(mode string) {
	if pagesFetchedTotal != nil {
		pagesFetchedTotal.WithLabelValues(mode).Inc()
	}
}

// PageBlocked records an anti-bot wall detection.
func PageBlocked() {
	if blockedPagesTotal != nil {
		blockedPagesTotal.Inc()
	}
}

// PriceFound records a resolved price by strategy name.
func PriceFound(strategy string) {
	if pricesFoundTotal != nil {
		pricesFoundTotal.WithLabelValues(strategy).Inc()
	}
}

// ExtractionMiss records a fetched page with no extractable price.
func ExtractionMiss() {
	if extractionMissesTotal != nil {
		extractionMissesTotal.Inc()
	}
}

// ObservationsSaved adds to the persisted observation count.
func ObservationsSaved(n int) {
	if observationsSaved != nil && n > 0 {
		observationsSaved.Add(float64(n))
	}
}

// ScanCompleted records the duration of one scan batch.
func ScanCompleted(d time.Duration) {
	if scanDurationSeconds != nil {
		scanDurationSeconds.Observe(d.Seconds())
	}
}
