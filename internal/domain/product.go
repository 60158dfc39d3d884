package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry. Products are loaded once and never modified.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

// PriceRange is a closed price interval. An inverted range (Min > Max) is
// allowed and simply contains nothing.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Contains reports whether price lies in [Min, Max].
func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}

// IsInverted reports whether Min is above Max.
func (r PriceRange) IsInverted() bool {
	return r.Min.GreaterThan(r.Max)
}
