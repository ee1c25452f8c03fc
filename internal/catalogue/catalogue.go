// Package catalogue holds the per-category review guidelines.
//
// A Catalogue is built once and never mutated; callers pass it to the
// components that need it instead of reaching for shared tables.
package catalogue

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/taxlens/internal/model"
	"gopkg.in/yaml.v3"
)

// Catalogue maps tax categories to guidelines
type Catalogue struct {
	entries map[model.TaxType]model.TaxTypeGuideline
}

// Default returns the built-in catalogue
func Default() *Catalogue {
	return &Catalogue{entries: defaultGuidelines()}
}

// New builds a catalogue from explicit entries. Every known category must be present.
func New(entries map[model.TaxType]model.TaxTypeGuideline) (*Catalogue, error) {
	c := &Catalogue{entries: make(map[model.TaxType]model.TaxTypeGuideline, len(entries))}
	for t, g := range entries {
		if t == model.TaxTypeUnknown {
			return nil, fmt.Errorf("guideline for unknown tax type")
		}
		c.entries[t] = g.Clone()
	}
	for _, t := range model.TaxTypes {
		if _, ok := c.entries[t]; !ok {
			return nil, fmt.Errorf("missing guideline for tax type %q", t)
		}
	}
	return c, nil
}

// Load reads guideline overrides from a YAML file and merges them onto the defaults.
//
// The file maps category names to guidelines:
//
//	income:
//	  key_fields: [...]
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return Parse(data)
}

// Parse merges YAML guideline overrides onto the defaults
func Parse(data []byte) (*Catalogue, error) {
	var raw map[string]model.TaxTypeGuideline
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}

	entries := defaultGuidelines()
	for name, g := range raw {
		t := model.ParseTaxType(name)
		if t == model.TaxTypeUnknown {
			return nil, fmt.Errorf("unknown tax type in catalogue: %q (supported: %s)", name, supported())
		}
		if g.IsEmpty() {
			return nil, fmt.Errorf("empty guideline for tax type %q", name)
		}
		entries[t] = g
	}

	return New(entries)
}

// Lookup returns the guideline for a category, falling back to income
func (c *Catalogue) Lookup(t model.TaxType) model.TaxTypeGuideline {
	if g, ok := c.entries[t]; ok {
		return g.Clone()
	}
	return c.entries[model.TaxTypeIncome].Clone()
}

// LookupString parses a free-form category name and looks it up
func (c *Catalogue) LookupString(name string) model.TaxTypeGuideline {
	return c.Lookup(model.ParseTaxType(name))
}

// Categories lists the known categories in declaration order
func (c *Catalogue) Categories() []model.TaxType {
	return append([]model.TaxType(nil), model.TaxTypes...)
}

func supported() string {
	names := make([]string, 0, len(model.TaxTypes))
	for _, t := range model.TaxTypes {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}
