package domain

import "github.com/shopspring/decimal"

// The accessors below let products and cart lines (through the embedded
// Product) go through the same filter.

func (p Product) FilterName() string           { return p.Name }
func (p Product) FilterCategory() string       { return p.Category }
func (p Product) FilterPrice() decimal.Decimal { return p.Price }
