package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/pricewatch-hq/pricewatch/internal/domain"
	"github.com/pricewatch-hq/pricewatch/internal/storage"
	"github.com/pricewatch-hq/pricewatch/internal/tracker"
)

// RefreshService is the slice of the tracking service the scheduler drives.
type RefreshService interface {
	RefreshTargets(ctx context.Context) ([]domain.TrackedProduct, error)
	Refresh(ctx context.Context, product domain.TrackedProduct) (tracker.RefreshResult, error)
}

// Logger is the structured-logging surface the scheduler uses.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Config controls the refresh cadence.
type Config struct {
	Interval time.Duration
}

// Scheduler periodically refreshes every tracked product. Each product is an
// independent fetch/extract/store sequence: one failure is logged and the
// pass moves on.
type Scheduler struct {
	svc      RefreshService
	throttle storage.Throttle
	interval time.Duration
	log      Logger
}

// New builds a refresh scheduler. A nil throttle disables URL throttling.
func New(svc RefreshService, throttle storage.Throttle, cfg Config, log Logger) *Scheduler {
	return &Scheduler{
		svc:      svc,
		throttle: throttle,
		interval: cfg.Interval,
		log:      log,
	}
}

// Run blocks until ctx is cancelled, refreshing all products every interval.
// An interval of zero disables the loop entirely: prices are then recorded
// only once, at tracking time.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.log.InfoObj("refresh loop disabled", "scheduler_state", map[string]any{"interval": "0"})
		<-ctx.Done()
		return ctx.Err()
	}

	s.log.InfoObj("refresh loop starting", "scheduler_state", map[string]any{
		"interval": s.interval.String(),
	})

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoObj("refresh loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce performs a single refresh pass across all tracked products.
func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()

	products, err := s.svc.RefreshTargets(ctx)
	if err != nil {
		s.log.ErrorObj("list refresh targets failed", "error", err.Error())
		return
	}

	refreshed, skipped, failed := 0, 0, 0
	for _, product := range products {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.throttle != nil {
			recent, err := s.throttle.RecentlyChecked(product.URL)
			if err != nil {
				s.log.WarnObj("throttle lookup failed", "throttle_error", map[string]any{
					"url":   product.URL,
					"error": err.Error(),
				})
			} else if recent {
				skipped++
				continue
			}
		}

		if _, err := s.svc.Refresh(ctx, product); err != nil {
			failed++
			// A page that lost its price markup is routine, not alarming.
			if errors.Is(err, tracker.ErrPriceNotFound) {
				s.log.WarnObj("refresh found no price", "refresh_skip", map[string]any{
					"product_id": product.ID,
					"url":        product.URL,
				})
			} else {
				s.log.ErrorObj("refresh failed", "refresh_error", map[string]any{
					"product_id": product.ID,
					"url":        product.URL,
					"error":      err.Error(),
				})
			}
			continue
		}
		refreshed++

		if s.throttle != nil {
			if err := s.throttle.MarkChecked(product.URL); err != nil {
				s.log.WarnObj("throttle mark failed", "throttle_error", map[string]any{
					"url":   product.URL,
					"error": err.Error(),
				})
			}
		}
	}

	s.log.InfoObj("refresh pass completed", "refresh_pass", map[string]any{
		"products":   len(products),
		"refreshed":  refreshed,
		"skipped":    skipped,
		"failed":     failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}
