// Package tracking defines the core records moved between the store, the
// resolve pipeline and the scan orchestrator.
package tracking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TrackedLink ties one product to one shop page. Links are owned by the
// store and read-only here; the scanner never mutates them.
type TrackedLink struct {
	ID        int64
	ProductID int64
	ShopID    int64
	ShopName  string
	URL       string
	Active    bool
	CreatedAt time.Time

	// ShopSelectors is the shop's raw hint configuration: selector strings
	// separated by newlines or commas, empty when the shop has none.
	ShopSelectors string
}

// Hints returns the shop's ordered selector hints. Malformed or empty
// configuration yields an empty list, never an error.
func (l TrackedLink) Hints() []string {
	return SplitHints(l.ShopSelectors)
}

// SplitHints parses raw selector configuration into an ordered hint list.
// Entries are separated by newlines or commas; blanks are dropped. Order is
// preserved: earlier hints are assumed more specific for that shop.
func SplitHints(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	hints := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		hints = append(hints, f)
	}
	return hints
}

// Status classifies the outcome of one resolve attempt.
type Status string

// Observation statuses persisted in price_logs.status.
const (
	StatusOK       Status = "OK"
	StatusError    Status = "ERROR"
	StatusNotFound Status = "NOT_FOUND"
)

// Observation is one timestamped price-resolution result for one tracked
// link. Observations are append-only historical facts: created once, never
// mutated, never deleted.
type Observation struct {
	ID          uuid.UUID
	ProductID   int64
	ShopID      int64
	URL         string
	PriceMinor  int64
	Currency    string
	Status      Status
	ErrorDetail string
	// RawText keeps the matched page text for audit.
	RawText    string
	ObservedAt time.Time
}
