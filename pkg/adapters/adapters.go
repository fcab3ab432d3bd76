package adapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package adapters holds the declarative site-adapter registry. An adapter is
// pure data: a site identifier plus one CSS selector for the product name and
// one for the price. Supporting a new site is a registry entry, not code.

// Adapter locates the name and price fields for one site family.
// Either selector may be empty; the extractor skips empty selectors, so an
// adapter can contribute just one of the two fields.
type Adapter struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	NameSelector  string `json:"name_selector" yaml:"name_selector"`
	PriceSelector string `json:"price_selector" yaml:"price_selector"`
}

type registryFile struct {
	Adapters []Adapter `json:"adapters" yaml:"adapters"`
}

// Registry is an ordered, validated adapter list. Order is priority order:
// the extractor tries adapters front to back and each field search stops at
// the first selector that matches.
type Registry struct {
	adapters []Adapter
	idx      map[string]Adapter
}

// All returns a copy of the adapters in priority order.
func (r *Registry) All() []Adapter {
	if r == nil || len(r.adapters) == 0 {
		return nil
	}
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// ByID returns the adapter entry for the given id, if present.
func (r *Registry) ByID(id string) (Adapter, bool) {
	id = strings.TrimSpace(id)
	if r == nil || id == "" {
		return Adapter{}, false
	}
	a, ok := r.idx[id]
	return a, ok
}

// Size returns the number of registered adapters.
func (r *Registry) Size() int {
	if r == nil {
		return 0
	}
	return len(r.adapters)
}

// Default returns the built-in adapter set covering the site families the
// original tracker understood. Priority order matters: Amazon before Flipkart.
func Default() *Registry {
	reg, err := newRegistry([]Adapter{
		{
			ID:            "amazon",
			Name:          "Amazon",
			NameSelector:  "span#productTitle",
			PriceSelector: "span.a-price-whole",
		},
		{
			ID:            "flipkart",
			Name:          "Flipkart",
			NameSelector:  "span.B_NuCI",
			PriceSelector: "div._30jeq3._16Jk6d",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("built-in adapters invalid: %v", err))
	}
	return reg
}

// Load reads an adapter registry from a YAML or JSON file.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("adapters file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open adapters file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read adapters file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(reg.Adapters) == 0 {
		return nil, errors.New("adapters file contains no adapter entries")
	}

	return newRegistry(reg.Adapters)
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("adapters file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func newRegistry(list []Adapter) (*Registry, error) {
	reg := &Registry{
		adapters: make([]Adapter, len(list)),
		idx:      make(map[string]Adapter, len(list)),
	}
	for i := range list {
		a := sanitizeAdapter(list[i])
		if err := validateAdapter(a); err != nil {
			return nil, fmt.Errorf("adapter[%d]: %w", i, err)
		}
		if _, exists := reg.idx[a.ID]; exists {
			return nil, fmt.Errorf("duplicate adapter id %q", a.ID)
		}
		reg.adapters[i] = a
		reg.idx[a.ID] = a
	}
	return reg, nil
}

func sanitizeAdapter(a Adapter) Adapter {
	a.ID = strings.TrimSpace(a.ID)
	a.Name = strings.TrimSpace(a.Name)
	a.NameSelector = strings.TrimSpace(a.NameSelector)
	a.PriceSelector = strings.TrimSpace(a.PriceSelector)
	if a.Name == "" {
		a.Name = a.ID
	}
	return a
}

func validateAdapter(a Adapter) error {
	if a.ID == "" {
		return errors.New("id is required")
	}
	if a.NameSelector == "" && a.PriceSelector == "" {
		return fmt.Errorf("adapter %q declares no selectors", a.ID)
	}
	return nil
}
