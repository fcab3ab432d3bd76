package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/pricewatch-hq/pricewatch/internal/domain"
	"github.com/pricewatch-hq/pricewatch/internal/storage"
	"github.com/pricewatch-hq/pricewatch/pkg/notifiers"
	"github.com/shopspring/decimal"
)

// PageFetcher retrieves raw page bytes for a product URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RecordExtractor turns page bytes into a canonical product record.
type RecordExtractor interface {
	Extract(raw []byte) (domain.ProductRecord, error)
}

// Store is the repository surface the service depends on.
type Store interface {
	CreateTrackedWithFirstObservation(ctx context.Context, url, name string, tags []string, price decimal.Decimal) (int64, error)
	AppendObservation(ctx context.Context, productID int64, price decimal.Decimal, observedAt time.Time) error
	LatestPrice(ctx context.Context, productID int64) (decimal.Decimal, bool, error)
	ListTracked(ctx context.Context) ([]domain.TrackedProduct, error)
	ListTrackedWithLatestPrice(ctx context.Context) ([]domain.TrackedSummary, error)
}

// AlertSink receives price-change alerts emitted during refresh.
type AlertSink interface {
	Notify(ctx context.Context, alert notifiers.PriceAlert) (int, error)
}

// Logger is the structured-logging surface the service uses.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type nopLogger struct{}

func (nopLogger) InfoObj(string, string, interface{})  {}
func (nopLogger) DebugObj(string, string, interface{}) {}
func (nopLogger) WarnObj(string, string, interface{})  {}
func (nopLogger) ErrorObj(string, string, interface{}) {}

// Service orchestrates Fetcher → Extractor → Repository for tracking and
// refreshing products. Each call is one independent fetch/extract/store
// sequence; nothing is shared between concurrent invocations.
type Service struct {
	fetcher   PageFetcher
	extractor RecordExtractor
	store     Store
	alerts    AlertSink
	log       Logger
}

// TrackResult reports a successful TrackNew call.
type TrackResult struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// RefreshResult reports a successful Refresh call.
type RefreshResult struct {
	Price      decimal.Decimal
	ObservedAt time.Time
	Changed    bool
}

// NewService wires the tracking service. Alerts and log may be nil.
func NewService(fetcher PageFetcher, extractor RecordExtractor, store Store, alerts AlertSink, log Logger) *Service {
	if log == nil {
		log = nopLogger{}
	}
	return &Service{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		alerts:    alerts,
		log:       log,
	}
}

// TrackNew fetches the page, extracts a record, and creates the product
// together with its first observation in one atomic unit.
//
// Failure taxonomy: fetch errors pass through untouched (transport vs HTTP
// status stays distinguishable), a missing price returns ErrPriceNotFound,
// a duplicate URL returns ErrAlreadyTracked, anything else from the store
// wraps into *StorageError. The store is never touched before a numeric
// price is in hand.
func (s *Service) TrackNew(ctx context.Context, url string, tags []string) (TrackResult, error) {
	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return TrackResult{}, err
	}

	record, err := s.extractor.Extract(raw)
	if err != nil {
		return TrackResult{}, err
	}
	if !record.HasPrice() {
		return TrackResult{}, ErrPriceNotFound
	}

	id, err := s.store.CreateTrackedWithFirstObservation(ctx, url, record.Name, tags, *record.Price)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateURL) {
			s.log.InfoObj("product already tracked", "track_duplicate", map[string]any{"url": url})
			return TrackResult{}, ErrAlreadyTracked
		}
		return TrackResult{}, &StorageError{Err: err}
	}

	s.log.InfoObj("tracking started", "track_result", map[string]any{
		"product_id": id,
		"url":        url,
		"name":       record.Name,
		"price":      record.Price.StringFixed(2),
	})
	return TrackResult{ID: id, Name: record.Name, Price: *record.Price}, nil
}

// Refresh re-fetches a tracked product's page and appends a new observation.
// The product row itself is never updated: the display name stays as
// captured at creation. A changed price additionally fans out an alert;
// alert failures are logged, never surfaced, since the observation is
// already durable.
func (s *Service) Refresh(ctx context.Context, product domain.TrackedProduct) (RefreshResult, error) {
	raw, err := s.fetcher.Fetch(ctx, product.URL)
	if err != nil {
		return RefreshResult{}, err
	}

	record, err := s.extractor.Extract(raw)
	if err != nil {
		return RefreshResult{}, err
	}
	if !record.HasPrice() {
		return RefreshResult{}, ErrPriceNotFound
	}

	previous, hasPrevious, err := s.store.LatestPrice(ctx, product.ID)
	if err != nil {
		return RefreshResult{}, &StorageError{Err: err}
	}

	observedAt := time.Now().UTC()
	if err := s.store.AppendObservation(ctx, product.ID, *record.Price, observedAt); err != nil {
		return RefreshResult{}, &StorageError{Err: err}
	}

	changed := hasPrevious && !previous.Equal(*record.Price)
	if changed && s.alerts != nil {
		var oldPrice *decimal.Decimal
		if hasPrevious {
			oldPrice = &previous
		}
		alert := notifiers.NewPriceAlert(product.ID, product.URL, product.Name, oldPrice, *record.Price)
		if _, err := s.alerts.Notify(ctx, alert); err != nil {
			s.log.WarnObj("price alert delivery incomplete", "alert_error", map[string]any{
				"product_id": product.ID,
				"error":      err.Error(),
			})
		}
	}

	s.log.DebugObj("refresh completed", "refresh_result", map[string]any{
		"product_id": product.ID,
		"price":      record.Price.StringFixed(2),
		"changed":    changed,
	})
	return RefreshResult{Price: *record.Price, ObservedAt: observedAt, Changed: changed}, nil
}

// ListTracked returns every tracked product with its latest observation,
// ordered by product id. This is the read surface the external collaborator
// renders from.
func (s *Service) ListTracked(ctx context.Context) ([]domain.TrackedSummary, error) {
	summaries, err := s.store.ListTrackedWithLatestPrice(ctx)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return summaries, nil
}

// RefreshTargets returns the products the refresh loop should visit.
func (s *Service) RefreshTargets(ctx context.Context) ([]domain.TrackedProduct, error) {
	products, err := s.store.ListTracked(ctx)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return products, nil
}
