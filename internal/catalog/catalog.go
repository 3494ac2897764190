package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed products.yaml
var productsYAML []byte

// ErrEmptyCatalog is returned when a catalog document holds no products.
var ErrEmptyCatalog = errors.New("catalog has no products")

type entry struct {
	Name  string `yaml:"name"`
	Brand string `yaml:"brand"`
	Type  string `yaml:"type"`
	Shade string `yaml:"shade"`
}

type document struct {
	Fair   []entry `yaml:"fair"`
	Medium []entry `yaml:"medium"`
	Dark   []entry `yaml:"dark"`
}

// Catalog is an immutable, ordered product table. It is safe for
// concurrent use because nothing mutates it after Load returns.
type Catalog struct {
	products   []Product
	byCategory map[Category][]Product
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded product table.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(productsYAML)
		if err != nil {
			panic("failed to load embedded products.yaml: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load parses a YAML product table. Unknown top-level keys, unknown
// product types and entries without a name or brand are rejected.
func Load(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{byCategory: make(map[Category][]Product, len(Categories))}
	sections := []struct {
		category Category
		entries  []entry
	}{
		{CategoryFair, doc.Fair},
		{CategoryMedium, doc.Medium},
		{CategoryDark, doc.Dark},
	}
	for _, section := range sections {
		for i, e := range section.entries {
			p, err := e.product(section.category)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", section.category, i, err)
			}
			c.products = append(c.products, p)
			c.byCategory[p.Category] = append(c.byCategory[p.Category], p)
		}
	}
	if len(c.products) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

func (e entry) product(category Category) (Product, error) {
	name := strings.TrimSpace(e.Name)
	brand := strings.TrimSpace(e.Brand)
	if name == "" {
		return Product{}, errors.New("name is required")
	}
	if brand == "" {
		return Product{}, errors.New("brand is required")
	}
	t, err := ParseProductType(e.Type)
	if err != nil {
		return Product{}, err
	}
	return Product{
		Brand:    brand,
		Type:     t,
		Name:     name,
		Category: category,
		Shade:    strings.TrimSpace(e.Shade),
	}, nil
}

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	return append([]Product(nil), c.products...)
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.products)
}

// ByCategory returns the products of one category in catalog order.
func (c *Catalog) ByCategory(category Category) []Product {
	return append([]Product(nil), c.byCategory[category]...)
}

// Brands lists the distinct brands available for a category, sorted.
func (c *Catalog) Brands(category Category) []string {
	seen := make(map[string]struct{})
	var brands []string
	for _, p := range c.byCategory[category] {
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	sort.Strings(brands)
	return brands
}

// Types lists the product types available for a category in the order
// they first appear in the catalog.
func (c *Catalog) Types(category Category) []ProductType {
	seen := make(map[ProductType]struct{})
	var types []ProductType
	for _, p := range c.byCategory[category] {
		if _, ok := seen[p.Type]; ok {
			continue
		}
		seen[p.Type] = struct{}{}
		types = append(types, p.Type)
	}
	return types
}
