package app

import (
	"context"
	"fmt"
	"os"

	"github.com/pricewatch-hq/pricewatch/internal/config"
	"github.com/pricewatch-hq/pricewatch/internal/extract"
	"github.com/pricewatch-hq/pricewatch/internal/fetch"
	"github.com/pricewatch-hq/pricewatch/internal/logger"
	"github.com/pricewatch-hq/pricewatch/internal/scheduler"
	"github.com/pricewatch-hq/pricewatch/internal/storage"
	"github.com/pricewatch-hq/pricewatch/internal/tracker"
	"github.com/pricewatch-hq/pricewatch/pkg/adapters"
	"github.com/pricewatch-hq/pricewatch/pkg/httpclient"
	"github.com/pricewatch-hq/pricewatch/pkg/notifiers"
)

// Tracker is the application runtime. It owns the storage pool, the throttle
// cache, and the refresh scheduler, and wires the fetch → extract → store
// pipeline behind the tracking service.
type Tracker struct {
	cfg       *config.Config
	service   *tracker.Service
	scheduler *scheduler.Scheduler
	store     *storage.Postgres
	throttle  storage.Throttle
	log       logger.Logger
}

// NewTracker builds the runtime from config: adapter registry, notifier
// fanout, Postgres pool (schema applied), throttle cache, and the service.
func NewTracker(ctx context.Context, cfg *config.Config, log logger.Logger) (*Tracker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	registry, err := loadAdapters(cfg.AdaptersFile, log)
	if err != nil {
		return nil, err
	}

	fanout, err := loadNotifiers(ctx, cfg.NotifiersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := store.Setup(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"host":      cfg.DBHost,
		"database":  cfg.DBName,
		"pool_size": cfg.DBPoolSize,
	})

	throttle, err := storage.NewThrottle(cfg.ThrottlePath, storage.ThrottleOptions{
		CheckTTL:        cfg.ThrottleTTL,
		CleanupInterval: cfg.ThrottleCleanupInterval,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init throttle: %w", err)
	}

	fetcher := fetch.New(httpclient.NewBrowserClient(cfg.FetchTimeout))
	extractor := extract.New(registry)
	service := tracker.NewService(fetcher, extractor, store, fanout, log)

	sched := scheduler.New(service, throttle, scheduler.Config{Interval: cfg.RefreshInterval}, log)

	return &Tracker{
		cfg:       cfg,
		service:   service,
		scheduler: sched,
		store:     store,
		throttle:  throttle,
		log:       log,
	}, nil
}

// Service exposes the tracking service for external callers (one-shot
// commands, future API surfaces).
func (t *Tracker) Service() *tracker.Service {
	return t.service
}

// Run starts the refresh loop until the context is cancelled, then releases
// resources.
func (t *Tracker) Run(ctx context.Context) error {
	if t == nil || t.scheduler == nil {
		return fmt.Errorf("tracker runtime is not initialized")
	}
	defer t.Close()
	return t.scheduler.Run(ctx)
}

// Close releases the storage pool and throttle cache.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	if t.throttle != nil {
		if err := t.throttle.Close(); err != nil {
			t.log.ErrorObj("throttle close failed", "error", err.Error())
		}
	}
	if t.store != nil {
		t.store.Close()
	}
}

// loadAdapters reads the adapter registry file, falling back to the built-in
// set when the file is absent.
func loadAdapters(path string, log logger.Logger) (*adapters.Registry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.InfoObj("adapters file absent; using built-in adapters", "adapters_file", path)
		return adapters.Default(), nil
	}

	registry, err := adapters.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load adapters registry: %w", err)
	}
	ids := make([]string, 0, registry.Size())
	for _, a := range registry.All() {
		ids = append(ids, a.ID)
	}
	log.InfoObj("adapters registry loaded", "adapters_meta", map[string]any{
		"count": registry.Size(),
		"ids":   ids,
	})
	return registry, nil
}

// loadNotifiers builds the alert fanout. No notifiers file means no alerts,
// which is a valid configuration.
func loadNotifiers(ctx context.Context, path string, log logger.Logger) (*notifiers.Fanout, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.InfoObj("notifiers file absent; price alerts disabled", "notifiers_file", path)
		return notifiers.NewFanout(nil), nil
	}

	registry, err := notifiers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}

	enabled := registry.Enabled()
	sinks, err := notifiers.BuildAll(ctx, notifiers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, cfg := range enabled {
		summaries = append(summaries, map[string]string{"id": cfg.ID, "type": cfg.Type})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})
	return notifiers.NewFanout(sinks), nil
}
