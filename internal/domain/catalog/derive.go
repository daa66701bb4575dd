package catalog

import (
	"sort"
	"strings"
)

const AllCategories = "all"

type SortBy string

const (
	SortByName      SortBy = "name"
	SortByPriceLow  SortBy = "price-low"
	SortByPriceHigh SortBy = "price-high"
	SortByRating    SortBy = "rating"
)

// Criteria is the per-session filter and sort state of a catalog browse.
type Criteria struct {
	SelectedCategory string `json:"selected_category"`
	SortBy           SortBy `json:"sort_by"`
	SearchQuery      string `json:"search_query"`
}

func DefaultCriteria() Criteria {
	return Criteria{
		SelectedCategory: AllCategories,
		SortBy:           SortByName,
	}
}

func (c *Criteria) SetCategory(category string) { c.SelectedCategory = category }
func (c *Criteria) SetSort(by SortBy)           { c.SortBy = by }
func (c *Criteria) SetSearch(query string)      { c.SearchQuery = query }

// Derive computes the visible product list: category filter, then search
// filter, then a stable sort. The input slice is not modified.
func Derive(products []Product, c Criteria) []Product {
	query := strings.ToLower(c.SearchQuery)

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if c.SelectedCategory != AllCategories && c.SelectedCategory != "" && p.Category != c.SelectedCategory {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p.Clone())
	}

	sort.SliceStable(out, lessFunc(out, c.SortBy))
	return out
}

func lessFunc(ps []Product, by SortBy) func(i, j int) bool {
	switch by {
	case SortByPriceLow:
		return func(i, j int) bool { return ps[i].Price.LessThan(ps[j].Price) }
	case SortByPriceHigh:
		return func(i, j int) bool { return ps[i].Price.GreaterThan(ps[j].Price) }
	case SortByRating:
		return func(i, j int) bool { return ps[i].Rating.GreaterThan(ps[j].Rating) }
	default:
		return func(i, j int) bool { return ps[i].Name < ps[j].Name }
	}
}
