package adapters

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAdaptersYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "adapters.yaml")
	content := `
adapters:
  - id: amazon
    name: Amazon
    name_selector: "span#productTitle"
    price_selector: "span.a-price-whole"
  - id: flipkart
    price_selector: "div._30jeq3._16Jk6d"
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write adapters file: %v", err)
	}

	reg, err := Load(file)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if reg.Size() != 2 {
		t.Fatalf("expected 2 adapters, got %d", reg.Size())
	}

	a, ok := reg.ByID("amazon")
	if !ok {
		t.Fatalf("expected adapter id amazon to be loaded")
	}
	if a.NameSelector != "span#productTitle" {
		t.Fatalf("unexpected name_selector: %s", a.NameSelector)
	}

	// Name defaults to the id; a price-only adapter is valid.
	b, ok := reg.ByID("flipkart")
	if !ok {
		t.Fatalf("expected adapter id flipkart to be loaded")
	}
	if b.Name != "flipkart" || b.NameSelector != "" {
		t.Fatalf("unexpected flipkart adapter: %+v", b)
	}

	// Priority order is file order.
	if all := reg.All(); all[0].ID != "amazon" || all[1].ID != "flipkart" {
		t.Fatalf("unexpected adapter order: %+v", all)
	}
}

func TestLoadAdaptersDuplicateID(t *testing.T) {
	file := filepath.Join(t.TempDir(), "adapters.yaml")
	content := `
adapters:
  - id: duplicate
    name_selector: "h1"
  - id: duplicate
    name_selector: "h2"
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write adapters file: %v", err)
	}

	if _, err := Load(file); err == nil {
		t.Fatalf("expected duplicate adapter error, got nil")
	}
}

func TestLoadAdaptersRejectsEmptySelectors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "adapters.yaml")
	content := `
adapters:
  - id: empty
    name: "No Selectors"
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write adapters file: %v", err)
	}

	if _, err := Load(file); err == nil {
		t.Fatalf("expected validation error for adapter without selectors")
	}
}

func TestDefaultRegistryCoversKnownSites(t *testing.T) {
	reg := Default()
	if reg.Size() != 2 {
		t.Fatalf("expected 2 built-in adapters, got %d", reg.Size())
	}
	if _, ok := reg.ByID("amazon"); !ok {
		t.Fatalf("missing amazon adapter")
	}
	if _, ok := reg.ByID("flipkart"); !ok {
		t.Fatalf("missing flipkart adapter")
	}
}
