package service

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/debounce"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/filter"
)

// SearchState is what the search box shows.
type SearchState struct {
	Buffer           string            `json:"buffer"`
	Query            string            `json:"query"`
	Field            filter.Field      `json:"field"`
	PriceRange       domain.PriceRange `json:"price_range"`
	Pending          bool              `json:"pending"`
	HasActiveFilters bool              `json:"has_active_filters"`
}

// SearchBox separates what the shopper has typed from the query the filter
// runs with. Keystrokes update the buffer at once; the buffer reaches the
// query only after the debouncer's quiet period.
//
// The debouncer's dispatcher must serialize commits with calls on the box.
type SearchBox struct {
	debouncer    *debounce.Debouncer
	defaultRange domain.PriceRange

	buffer string
	query  string
	field  filter.Field
	rng    domain.PriceRange
}

// NewSearchBox returns an empty box searching categories across defaultRange.
func NewSearchBox(defaultRange domain.PriceRange, d *debounce.Debouncer) *SearchBox {
	return &SearchBox{
		debouncer:    d,
		defaultRange: defaultRange,
		field:        filter.FieldCategory,
		rng:          defaultRange,
	}
}

// Type replaces the buffer with text and schedules it to become the query.
func (b *SearchBox) Type(text string) {
	b.buffer = text
	b.debouncer.Trigger(func() { b.query = text })
}

// Clear empties the buffer. The empty query is propagated like any other
// keystroke.
func (b *SearchBox) Clear() { b.Type("") }

// Buffer is the text as typed.
func (b *SearchBox) Buffer() string { return b.buffer }

// Query is the text the filter currently runs with.
func (b *SearchBox) Query() string { return b.query }

// Pending reports whether a typed value has not reached the query yet.
func (b *SearchBox) Pending() bool { return b.debouncer.Pending() }

// Field is the attribute the query is matched against.
func (b *SearchBox) Field() filter.Field { return b.field }

// SetField changes the searched attribute. It takes effect immediately.
func (b *SearchBox) SetField(f filter.Field) { b.field = f }

// PriceRange is the applied price filter.
func (b *SearchBox) PriceRange() domain.PriceRange { return b.rng }

// SetPriceRange applies r as given; an inverted range is kept and matches
// nothing.
func (b *SearchBox) SetPriceRange(r domain.PriceRange) { b.rng = r }

// ResetPriceRange restores the full catalog range.
func (b *SearchBox) ResetPriceRange() { b.rng = b.defaultRange }

// Criteria is the committed filter.
func (b *SearchBox) Criteria() filter.Criteria {
	return filter.Criteria{Query: b.query, Field: b.field, Range: b.rng}
}

// HasActiveFilters reports whether the committed filter narrows the catalog.
func (b *SearchBox) HasActiveFilters(maxPrice decimal.Decimal) bool {
	return b.Criteria().Active(maxPrice)
}

// State captures the box for display.
func (b *SearchBox) State(maxPrice decimal.Decimal) SearchState {
	return SearchState{
		Buffer:           b.buffer,
		Query:            b.query,
		Field:            b.field,
		PriceRange:       b.rng,
		Pending:          b.Pending(),
		HasActiveFilters: b.HasActiveFilters(maxPrice),
	}
}

// Close drops any pending propagation.
func (b *SearchBox) Close() { b.debouncer.Cancel() }
