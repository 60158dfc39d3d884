package http

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/confirm"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/filter"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/pagination"
)

// productListView is one page of the filtered catalog plus the results
// summary.
type productListView struct {
	pagination.Result[domain.Product]
	Criteria         filter.Criteria `json:"criteria"`
	Total            int             `json:"total"`
	Filtered         int             `json:"filtered"`
	HasActiveFilters bool            `json:"has_active_filters"`
}

type priceRangeView struct {
	Default    domain.PriceRange `json:"default"`
	Categories []string          `json:"categories"`
}

type searchView struct {
	service.SearchState
	Results productListView `json:"results"`
}

type cartView struct {
	Items        []domain.CartLineItem `json:"items"`
	ItemCount    int                   `json:"item_count"`
	Filtered     int                   `json:"filtered"`
	TotalItems   int                   `json:"total_items"`
	TotalPrice   decimal.Decimal       `json:"total_price"`
	Confirmation *confirm.Request      `json:"confirmation,omitempty"`
	Notices      []service.Notice      `json:"notices"`
}

// pendingView answers a request that now waits for the shopper to confirm.
type pendingView struct {
	Confirmation confirm.Request `json:"confirmation"`
	Cart         cartView        `json:"cart"`
}

type confirmationView struct {
	State   confirm.State    `json:"state"`
	Request *confirm.Request `json:"request,omitempty"`
}

type checkoutView struct {
	service.CheckoutState
	Items      []domain.CartLineItem `json:"items"`
	TotalItems int                   `json:"total_items"`
	TotalPrice decimal.Decimal       `json:"total_price"`
	Tax        decimal.Decimal       `json:"tax"`
	GrandTotal decimal.Decimal       `json:"grand_total"`
	Notices    []service.Notice      `json:"notices"`
}

type submitView struct {
	Status checkout.Status `json:"status"`
	Order  checkout.Order  `json:"order"`
}

func newCartView(snap service.Snapshot, items []domain.CartLineItem) cartView {
	notices := snap.Notices
	if notices == nil {
		notices = []service.Notice{}
	}
	return cartView{
		Items:        items,
		ItemCount:    snap.Cart.Len(),
		Filtered:     len(items),
		TotalItems:   snap.Cart.TotalItems(),
		TotalPrice:   snap.Cart.TotalPrice(),
		Confirmation: snap.Confirmation,
		Notices:      notices,
	}
}

func newConfirmationView(req confirm.Request, ok bool) confirmationView {
	if !ok {
		return confirmationView{State: confirm.StateIdle}
	}
	return confirmationView{State: confirm.StatePending, Request: &req}
}

func newCheckoutView(snap service.Snapshot) checkoutView {
	notices := snap.Notices
	if notices == nil {
		notices = []service.Notice{}
	}
	subtotal := snap.Cart.TotalPrice()
	tax, grandTotal := checkout.Summary(subtotal)
	return checkoutView{
		CheckoutState: snap.Checkout,
		Items:         cartItems(snap.Cart.Items),
		TotalItems:    snap.Cart.TotalItems(),
		TotalPrice:    subtotal,
		Tax:           tax,
		GrandTotal:    grandTotal,
		Notices:       notices,
	}
}

// cartItems keeps an empty cart rendering as [] rather than null.
func cartItems(items []domain.CartLineItem) []domain.CartLineItem {
	if items == nil {
		return []domain.CartLineItem{}
	}
	return items
}
