package handlers

import (
	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/usecase"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Message      string
	MessageKind  string
	Outcome      *usecase.Outcome
	Brands       []option
	Types        []option
	MaxPerType   int
	MaxAllowed   int
	Summary      string
	EmptyMessage string
}

func newPageData(cat *catalog.Catalog, outcome *usecase.Outcome) pageData {
	selectedBrands := make(map[string]bool, len(outcome.Criteria.Brands))
	for _, b := range outcome.Criteria.Brands {
		selectedBrands[b] = true
	}
	selectedTypes := make(map[catalog.ProductType]bool, len(outcome.Criteria.Types))
	for _, t := range outcome.Criteria.Types {
		selectedTypes[t] = true
	}

	data := pageData{
		Outcome:      outcome,
		MaxPerType:   outcome.Criteria.MaxPerType,
		MaxAllowed:   maxPerTypeLimit,
		Summary:      outcome.Criteria.Summary(),
		EmptyMessage: emptyResultMessage,
	}
	for _, b := range cat.Brands(outcome.Category) {
		data.Brands = append(data.Brands, option{Value: b, Label: b, Selected: selectedBrands[b]})
	}
	for _, t := range cat.Types(outcome.Category) {
		data.Types = append(data.Types, option{Value: string(t), Label: t.Label(), Selected: selectedTypes[t]})
	}
	return data
}
