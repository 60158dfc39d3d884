package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/filter"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

// SearchHandler drives the per-session search box.
type SearchHandler struct {
	products *ProductHandler
	logger   *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(products *ProductHandler, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		products: products,
		logger:   logger,
	}
}

// SearchInputRequest is one keystroke's worth of search box text.
type SearchInputRequest struct {
	Text  string `json:"text" validate:"max=200"`
	Field string `json:"field" validate:"omitempty,oneof=name category"`
}

// PriceRangeRequest carries the filter dialog's inputs.
type PriceRangeRequest struct {
	Min looseNumber `json:"min"`
	Max looseNumber `json:"max"`
}

// GetSearch handles GET /api/v1/search
func (h *SearchHandler) GetSearch(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())

	var criteria filter.Criteria
	state := sess.Search(func(b *service.SearchBox) { criteria = b.Criteria() })

	httputil.WriteData(w, http.StatusOK, searchView{
		SearchState: state,
		Results:     h.products.list(criteria, pagination.FromRequest(r)),
	})
}

// TypeInput handles POST /api/v1/search/input
func (h *SearchHandler) TypeInput(w http.ResponseWriter, r *http.Request) {
	var req SearchInputRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	state := service.SessionFromContext(r.Context()).Search(func(b *service.SearchBox) {
		if req.Field != "" {
			b.SetField(filter.ParseField(req.Field))
		}
		b.Type(req.Text)
	})
	httputil.WriteData(w, http.StatusAccepted, state)
}

// ClearInput handles DELETE /api/v1/search/input
func (h *SearchHandler) ClearInput(w http.ResponseWriter, r *http.Request) {
	state := service.SessionFromContext(r.Context()).Search(func(b *service.SearchBox) { b.Clear() })
	httputil.WriteData(w, http.StatusAccepted, state)
}

// SetPriceRange handles PUT /api/v1/search/price-range
func (h *SearchHandler) SetPriceRange(w http.ResponseWriter, r *http.Request) {
	var req PriceRangeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rng := priceRange(string(req.Min), string(req.Max), h.products.catalog.MaxPrice())
	state := service.SessionFromContext(r.Context()).Search(func(b *service.SearchBox) { b.SetPriceRange(rng) })
	httputil.WriteData(w, http.StatusOK, state)
}

// ResetPriceRange handles DELETE /api/v1/search/price-range
func (h *SearchHandler) ResetPriceRange(w http.ResponseWriter, r *http.Request) {
	state := service.SessionFromContext(r.Context()).Search(func(b *service.SearchBox) { b.ResetPriceRange() })
	httputil.WriteData(w, http.StatusOK, state)
}
