// Package recommend narrows the product catalog down to the items shown
// for a detected skin tone category.
package recommend

import (
	"strings"

	"github.com/example/makeup-recommender/internal/catalog"
)

// DefaultMaxPerType is the per-type limit applied when a request does not
// specify one.
const DefaultMaxPerType = 3

// Criteria narrows a recommendation. Empty Brands or Types mean no filter
// on that dimension; MaxPerType <= 0 means no limit.
type Criteria struct {
	Brands     []string              `json:"brands,omitempty"`
	Types      []catalog.ProductType `json:"types,omitempty"`
	MaxPerType int                   `json:"max_per_type"`
}

// Summary renders the active brand and type filters, e.g.
// "Brand: MAC; Type: Lipstick". It is empty when nothing is filtered.
func (c Criteria) Summary() string {
	var parts []string
	if len(c.Brands) > 0 {
		parts = append(parts, "Brand: "+strings.Join(c.Brands, ", "))
	}
	if len(c.Types) > 0 {
		labels := make([]string, len(c.Types))
		for i, t := range c.Types {
			labels[i] = t.Label()
		}
		parts = append(parts, "Type: "+strings.Join(labels, ", "))
	}
	return strings.Join(parts, "; ")
}

// Recommend returns the products of a category that pass the criteria.
// Products are grouped by type, each group truncated to MaxPerType, and
// groups appear in the order their type first occurs in the catalog.
func Recommend(cat *catalog.Catalog, category catalog.Category, criteria Criteria) []catalog.Product {
	brands := make(map[string]struct{}, len(criteria.Brands))
	for _, b := range criteria.Brands {
		brands[strings.ToLower(strings.TrimSpace(b))] = struct{}{}
	}
	types := make(map[catalog.ProductType]struct{}, len(criteria.Types))
	for _, t := range criteria.Types {
		types[t] = struct{}{}
	}

	var order []catalog.ProductType
	groups := make(map[catalog.ProductType][]catalog.Product)
	for _, p := range cat.ByCategory(category) {
		if len(brands) > 0 {
			if _, ok := brands[strings.ToLower(p.Brand)]; !ok {
				continue
			}
		}
		if len(types) > 0 {
			if _, ok := types[p.Type]; !ok {
				continue
			}
		}

		group, seen := groups[p.Type]
		if !seen {
			order = append(order, p.Type)
		}
		if criteria.MaxPerType > 0 && len(group) >= criteria.MaxPerType {
			continue
		}
		groups[p.Type] = append(group, p)
	}

	result := make([]catalog.Product, 0)
	for _, t := range order {
		result = append(result, groups[t]...)
	}
	return result
}

// TypeGroup is a run of recommended products sharing one type.
type TypeGroup struct {
	Type     catalog.ProductType `json:"type"`
	Label    string              `json:"label"`
	Family   catalog.Family      `json:"family"`
	Products []catalog.Product   `json:"products"`
}

// Group partitions products into consecutive type groups, keeping order.
func Group(products []catalog.Product) []TypeGroup {
	groups := make([]TypeGroup, 0)
	index := make(map[catalog.ProductType]int)
	for _, p := range products {
		i, ok := index[p.Type]
		if !ok {
			i = len(groups)
			index[p.Type] = i
			groups = append(groups, TypeGroup{
				Type:   p.Type,
				Label:  p.Type.Label(),
				Family: p.Type.Family(),
			})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	return groups
}
