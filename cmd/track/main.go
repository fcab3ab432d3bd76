package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pricewatch-hq/pricewatch/internal/app"
	"github.com/pricewatch-hq/pricewatch/internal/config"
	"github.com/pricewatch-hq/pricewatch/internal/logger"
	"github.com/pricewatch-hq/pricewatch/internal/tracker"
)

// track is the one-shot entrypoint for external callers: fetch one URL,
// extract a record, and start tracking it. Outcomes map to exit status and
// message: success (0), already tracked (0, informational), anything else (1).
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: track <url> [tag ...]")
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "track failed: %v\n", err)
		os.Exit(1)
	}
}

func run(url string, tags []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtime, err := app.NewTracker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer runtime.Close()

	result, err := runtime.Service().TrackNew(ctx, url, tags)
	switch {
	case err == nil:
		fmt.Printf("tracking %q at %s\n", result.Name, result.Price.StringFixed(2))
		return nil
	case errors.Is(err, tracker.ErrAlreadyTracked):
		fmt.Println("this product is already being tracked")
		return nil
	case errors.Is(err, tracker.ErrPriceNotFound):
		return fmt.Errorf("could not find a numeric price on the page")
	default:
		return err
	}
}
