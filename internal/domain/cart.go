package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// CartLineItem is a product in the cart together with how many of it.
// Quantity is always at least 1.
type CartLineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity.
func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered list of line items with unique product IDs, in the
// order products were first added.
//
// All transitions return a new Cart and leave the receiver untouched, so a
// Cart value can be handed out freely.
type Cart struct {
	Items []CartLineItem `json:"items"`
}

// NewCart builds a cart from items after dropping invalid records.
func NewCart(items []CartLineItem) Cart {
	return Cart{Items: items}.Normalize()
}

// FindItemIndex returns the position of the line for productID, or -1.
func (c Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ID == productID {
			return i
		}
	}
	return -1
}

// Item returns the line for productID.
func (c Cart) Item(productID string) (CartLineItem, bool) {
	if i := c.FindItemIndex(productID); i >= 0 {
		return c.Items[i], true
	}
	return CartLineItem{}, false
}

// Len is the number of distinct products.
func (c Cart) Len() int { return len(c.Items) }

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// TotalItems is the sum of all quantities.
func (c Cart) TotalItems() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// TotalPrice is the sum of price times quantity over all lines.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// AddItem increments the line for p, or appends a new line with quantity 1.
func (c Cart) AddItem(p Product) Cart {
	if i := c.FindItemIndex(p.ID); i >= 0 {
		return c.withQuantity(i, c.Items[i].Quantity+1)
	}
	items := make([]CartLineItem, len(c.Items), len(c.Items)+1)
	copy(items, c.Items)
	return Cart{Items: append(items, CartLineItem{Product: p, Quantity: 1})}
}

// RemoveItem drops the line for productID. Unknown IDs leave the cart as is.
func (c Cart) RemoveItem(productID string) Cart {
	i := c.FindItemIndex(productID)
	if i < 0 {
		return c
	}
	return Cart{Items: slices.Delete(slices.Clone(c.Items), i, i+1)}
}

// IncreaseQuantity adds one to the line for productID.
func (c Cart) IncreaseQuantity(productID string) Cart {
	i := c.FindItemIndex(productID)
	if i < 0 {
		return c
	}
	return c.withQuantity(i, c.Items[i].Quantity+1)
}

// DecreaseQuantity subtracts one from the line for productID, but never
// below 1: removing a line is always a separate, explicit transition.
func (c Cart) DecreaseQuantity(productID string) Cart {
	i := c.FindItemIndex(productID)
	if i < 0 || c.Items[i].Quantity <= 1 {
		return c
	}
	return c.withQuantity(i, c.Items[i].Quantity-1)
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{Items: []CartLineItem{}}
}

// Normalize drops lines with an empty product ID, a quantity below 1, or a
// product ID already seen earlier in the list.
func (c Cart) Normalize() Cart {
	items := make([]CartLineItem, 0, len(c.Items))
	seen := make(map[string]struct{}, len(c.Items))
	for _, it := range c.Items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}
	return Cart{Items: items}
}

func (c Cart) withQuantity(i, qty int) Cart {
	items := slices.Clone(c.Items)
	items[i].Quantity = qty
	return Cart{Items: items}
}
