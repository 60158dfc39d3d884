package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/confirm"
	"github.com/utafrali/storefront/internal/filter"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(c *catalog.Catalog, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		catalog: c,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
}

// GetCart handles GET /api/v1/cart. The optional q, field, min and max
// parameters filter the lines shown; totals always cover the whole cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	snap := service.SessionFromContext(r.Context()).Snapshot()

	items := snap.Cart.Items
	if hasFilterParams(r) {
		items = filter.Apply(items, criteriaFromQuery(r, h.catalog.MaxPrice()))
	}

	httputil.WriteData(w, http.StatusOK, newCartView(snap, cartItems(items)))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess := service.SessionFromContext(r.Context())
	if _, err := sess.AddItem(r.Context(), req.ProductID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeCart(w, http.StatusOK, sess)
}

// IncreaseQuantity handles POST /api/v1/cart/items/{id}/increase
func (h *CartHandler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())
	sess.IncreaseQuantity(r.Context(), chi.URLParam(r, "id"))
	h.writeCart(w, http.StatusOK, sess)
}

// DecreaseQuantity handles POST /api/v1/cart/items/{id}/decrease. Taking
// away the last unit needs confirmation and answers 202.
func (h *CartHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())

	outcome, req := sess.DecreaseQuantity(r.Context(), chi.URLParam(r, "id"))
	if outcome == service.DecreaseConfirmationRequired && req != nil {
		h.writePending(w, sess, *req)
		return
	}
	h.writeCart(w, http.StatusOK, sess)
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())

	req, ok := sess.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		h.writeCart(w, http.StatusOK, sess)
		return
	}
	h.writePending(w, sess, req)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())

	req, ok := sess.ClearCart(r.Context())
	if !ok {
		h.writeCart(w, http.StatusOK, sess)
		return
	}
	h.writePending(w, sess, req)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, status int, sess *service.Session) {
	snap := sess.Snapshot()
	httputil.WriteData(w, status, newCartView(snap, cartItems(snap.Cart.Items)))
}

func (h *CartHandler) writePending(w http.ResponseWriter, sess *service.Session, req confirm.Request) {
	snap := sess.Snapshot()
	httputil.WriteData(w, http.StatusAccepted, pendingView{
		Confirmation: req,
		Cart:         newCartView(snap, cartItems(snap.Cart.Items)),
	})
}
