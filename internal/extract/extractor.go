package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricewatch-hq/pricewatch/internal/domain"
	"github.com/pricewatch-hq/pricewatch/pkg/adapters"
)

// Extractor turns raw page bytes into a canonical product record using an
// ordered adapter list. Extraction never fails hard: a missing name degrades
// to the sentinel and a missing or unparseable price degrades to absent.
// Deciding whether an absent price is an error is the caller's job.
type Extractor struct {
	registry *adapters.Registry
}

// New builds an extractor over the given registry (built-ins when nil).
func New(reg *adapters.Registry) *Extractor {
	if reg == nil {
		reg = adapters.Default()
	}
	return &Extractor{registry: reg}
}

// Extract parses the page and applies the adapter list. The name and price
// searches are independent: each walks the adapters in priority order and
// stops at the first selector that matches, so in principle the two fields
// can come from different adapters.
func (e *Extractor) Extract(raw []byte) (domain.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return domain.ProductRecord{Name: domain.NameNotFound}, fmt.Errorf("parse html: %w", err)
	}

	record := domain.ProductRecord{Name: domain.NameNotFound}

	for _, a := range e.registry.All() {
		if a.NameSelector == "" {
			continue
		}
		if node := doc.Find(a.NameSelector).First(); node.Length() > 0 {
			if name := strings.TrimSpace(node.Text()); name != "" {
				record.Name = name
				break
			}
		}
	}

	for _, a := range e.registry.All() {
		if a.PriceSelector == "" {
			continue
		}
		node := doc.Find(a.PriceSelector).First()
		if node.Length() == 0 {
			continue
		}
		if price, ok := ParsePrice(node.Text()); ok {
			record.Price = &price
		}
		// First matching element decides, parseable or not.
		break
	}

	return record, nil
}
