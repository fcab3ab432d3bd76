package notifiers

import "context"

// Notifier delivers price alerts to a downstream sink (SQS, SNS, Pub/Sub, HTTP).
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, alert PriceAlert) error
}
