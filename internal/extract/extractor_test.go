package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pricewatch-hq/pricewatch/internal/domain"
	"github.com/pricewatch-hq/pricewatch/pkg/adapters"
	"github.com/shopspring/decimal"
)

func TestExtractAmazonStylePage(t *testing.T) {
	html := []byte(`
<html><body>
  <span id="productTitle">  Wireless Headphones  </span>
  <span class="a-price-whole">2,499.00</span>
</body></html>`)

	record, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if record.Name != "Wireless Headphones" {
		t.Errorf("name = %q", record.Name)
	}
	if !record.HasPrice() {
		t.Fatalf("expected a price")
	}
	if !record.Price.Equal(decimal.NewFromInt(2499)) {
		t.Errorf("price = %s, want 2499", record.Price)
	}
}

func TestExtractFallsBackToSecondAdapter(t *testing.T) {
	// No Amazon markup anywhere; only the second adapter's selectors match.
	html := []byte(`
<html><body>
  <span class="B_NuCI">Running Shoes</span>
  <div class="_30jeq3 _16Jk6d">₹3,999</div>
</body></html>`)

	record, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if record.Name != "Running Shoes" {
		t.Errorf("name = %q", record.Name)
	}
	if !record.HasPrice() || !record.Price.Equal(decimal.NewFromInt(3999)) {
		t.Fatalf("price = %v, want 3999", record.Price)
	}
}

func TestExtractFieldsFromDifferentAdapters(t *testing.T) {
	// Name matches only the first adapter, price only the second. The two
	// field searches are independent.
	html := []byte(`
<html><body>
  <span id="productTitle">Mixed Markup Product</span>
  <div class="_30jeq3 _16Jk6d">₹1,500</div>
</body></html>`)

	record, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if record.Name != "Mixed Markup Product" {
		t.Errorf("name = %q", record.Name)
	}
	if !record.HasPrice() || !record.Price.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("price = %v, want 1500", record.Price)
	}
}

func TestExtractMissingNameYieldsSentinel(t *testing.T) {
	html := []byte(`<html><body><span class="a-price-whole">100</span></body></html>`)

	record, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if record.Name != domain.NameNotFound {
		t.Errorf("name = %q, want sentinel", record.Name)
	}
	if !record.HasPrice() {
		t.Fatalf("expected a price")
	}
}

func TestExtractMissingPriceYieldsAbsent(t *testing.T) {
	html := []byte(`<html><body><span id="productTitle">No Price Here</span></body></html>`)

	record, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if record.HasPrice() {
		t.Fatalf("expected no price, got %s", record.Price)
	}
}

func TestExtractFirstPriceMatchWinsEvenWhenUnparseable(t *testing.T) {
	// The first adapter's price element exists but holds no number; the
	// search stops there instead of trying the next adapter.
	html := []byte(`
<html><body>
  <span class="a-price-whole">Currently unavailable</span>
  <div class="_30jeq3 _16Jk6d">₹999</div>
</body></html>`)

	record, err := New(nil).Extract(html)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if record.HasPrice() {
		t.Fatalf("expected no price, got %s", record.Price)
	}
}

func TestExtractMultiMegabytePage(t *testing.T) {
	// Product pages for the supported site families routinely run past a
	// megabyte; the whole body must be parsed, wherever the fields sit.
	var page strings.Builder
	page.WriteString(`<html><body><span id="productTitle">Buried Deep</span>`)
	filler := strings.Repeat("<div>padding</div>", 1<<16)
	page.WriteString(filler)
	page.WriteString(filler)
	page.WriteString(filler)
	page.WriteString(filler)
	page.WriteString(`<span class="a-price-whole">2,499</span></body></html>`)

	raw := []byte(page.String())
	if len(raw) < 2<<20 {
		t.Fatalf("fixture too small to be representative: %d bytes", len(raw))
	}

	record, err := New(nil).Extract(raw)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if record.Name != "Buried Deep" {
		t.Errorf("name = %q", record.Name)
	}
	if !record.HasPrice() || !record.Price.Equal(decimal.NewFromInt(2499)) {
		t.Fatalf("price = %v, want 2499", record.Price)
	}
}

func TestExtractHonorsRegistryPriority(t *testing.T) {
	reg := mustRegistry(t, `
adapters:
  - id: site-a
    name_selector: "h1.title-a"
    price_selector: "span.price-a"
  - id: site-b
    name_selector: "h1.title-b"
    price_selector: "span.price-b"
`)
	html := []byte(`
<html><body>
  <h1 class="title-a">From A</h1>
  <h1 class="title-b">From B</h1>
  <span class="price-a">10</span>
  <span class="price-b">20</span>
</body></html>`)

	record, err := New(reg).Extract(html)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if record.Name != "From A" {
		t.Errorf("name = %q, want From A", record.Name)
	}
	if !record.HasPrice() || !record.Price.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("price = %v, want 10", record.Price)
	}
}

func mustRegistry(t *testing.T, yaml string) *adapters.Registry {
	t.Helper()
	file := filepath.Join(t.TempDir(), "adapters.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write adapters file: %v", err)
	}
	reg, err := adapters.Load(file)
	if err != nil {
		t.Fatalf("load adapters: %v", err)
	}
	return reg
}
