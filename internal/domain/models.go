package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Domain contains core models shared across the tracking pipeline.

// NameNotFound is the display name recorded when no adapter selector
// matched a name element on the page.
const NameNotFound = "Name not found"

// TrackedProduct is one row of the master list. Identity is the canonical
// product URL; the display name is captured once at creation and never
// updated by refreshes.
type TrackedProduct struct {
	ID        int64
	URL       string
	Name      string
	Tags      []string
	CreatedAt time.Time
}

// PriceObservation is a single timestamped price reading belonging to a
// tracked product. Observations are append-only; they disappear only when
// the whole product is deleted.
type PriceObservation struct {
	ID         int64
	ProductID  int64
	Price      decimal.Decimal
	ObservedAt time.Time
}

// ProductRecord is the extractor's output for one page: a display name
// (possibly the NameNotFound sentinel) and an optional price. It is never
// persisted as its own entity.
type ProductRecord struct {
	Name  string
	Price *decimal.Decimal
}

// HasPrice reports whether a numeric price was extracted.
func (r ProductRecord) HasPrice() bool { return r.Price != nil }

// TrackedSummary pairs a product with its most recent observation, if any.
type TrackedSummary struct {
	Product          TrackedProduct
	LatestPrice      *decimal.Decimal
	LatestObservedAt *time.Time
}
