// Package filter selects products or cart lines by a text query on one field
// and a closed price range.
package filter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

// Field names the product attribute the text query is matched against.
type Field string

const (
	FieldName     Field = "name"
	FieldCategory Field = "category"
)

// ParseField maps a query-string value to a Field. Anything other than
// "name" searches the category, which is what the catalog page does.
func ParseField(s string) Field {
	if Field(strings.ToLower(strings.TrimSpace(s))) == FieldName {
		return FieldName
	}
	return FieldCategory
}

// Item is anything with a name, a category and a price.
type Item interface {
	FilterName() string
	FilterCategory() string
	FilterPrice() decimal.Decimal
}

// Criteria is one filter request.
type Criteria struct {
	Query string            `json:"query"`
	Field Field             `json:"field"`
	Range domain.PriceRange `json:"price_range"`
}

// Matches reports whether item passes both the text and the price test.
// Text matching is a case-insensitive substring test; an empty query
// matches everything.
func (c Criteria) Matches(item Item) bool {
	if !c.Range.Contains(item.FilterPrice()) {
		return false
	}
	if c.Query == "" {
		return true
	}

	haystack := item.FilterCategory()
	if c.Field == FieldName {
		haystack = item.FilterName()
	}
	return strings.Contains(strings.ToUpper(haystack), strings.ToUpper(c.Query))
}

// Active reports whether c narrows a catalog whose dearest product costs
// maxPrice: a query is set, or the range is tighter than [0, maxPrice].
// The field alone never counts.
func (c Criteria) Active(maxPrice decimal.Decimal) bool {
	return c.Query != "" || c.Range.Min.IsPositive() || c.Range.Max.LessThan(maxPrice)
}

// Apply returns the items matching c, in their original order. The input is
// never modified and the result is never nil.
func Apply[T Item](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	if c.Range.IsInverted() {
		return out
	}
	for _, it := range items {
		if c.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
