package notifiers

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceAlert is the payload delivered to alert sinks when a refresh observes
// a changed price for a tracked product.
type PriceAlert struct {
	ProductID  int64            `json:"product_id"`
	URL        string           `json:"url"`
	Name       string           `json:"name"`
	OldPrice   *decimal.Decimal `json:"old_price,omitempty"`
	NewPrice   decimal.Decimal  `json:"new_price"`
	ObservedAt time.Time        `json:"observed_at"`
}

// NewPriceAlert constructs an alert for the given product and prices.
func NewPriceAlert(productID int64, url, name string, oldPrice *decimal.Decimal, newPrice decimal.Decimal) PriceAlert {
	return PriceAlert{
		ProductID:  productID,
		URL:        url,
		Name:       name,
		OldPrice:   oldPrice,
		NewPrice:   newPrice,
		ObservedAt: time.Now().UTC(),
	}
}
