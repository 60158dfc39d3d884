package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/filter"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ProductHandler serves the read-only catalog.
type ProductHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(c *catalog.Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria := criteriaFromQuery(r, h.catalog.MaxPrice())
	httputil.WriteData(w, http.StatusOK, h.list(criteria, pagination.FromRequest(r)))
}

// PriceRange handles GET /api/v1/products/price-range
func (h *ProductHandler) PriceRange(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, priceRangeView{
		Default:    h.catalog.DefaultPriceRange(),
		Categories: h.catalog.Categories(),
	})
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

func (h *ProductHandler) list(c filter.Criteria, page pagination.Params) productListView {
	all := h.catalog.List()
	matched := filter.Apply(all, c)
	maxPrice := h.catalog.MaxPrice()

	return productListView{
		Result:           pagination.Paginate(matched, page),
		Criteria:         c,
		Total:            len(all),
		Filtered:         len(matched),
		HasActiveFilters: c.Active(maxPrice),
	}
}
