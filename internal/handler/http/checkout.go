package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for the checkout page.
type CheckoutHandler struct {
	logger *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{logger: logger}
}

// GetCheckout handles GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	snap := service.SessionFromContext(r.Context()).Snapshot()
	httputil.WriteData(w, http.StatusOK, newCheckoutView(snap))
}

// SubmitOrder handles POST /api/v1/checkout. The order completes in the
// background; poll GET /api/v1/checkout for the outcome.
func (h *CheckoutHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := httputil.DecodeJSON(r, &form); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sess := service.SessionFromContext(r.Context())
	order, err := sess.SubmitOrder(r.Context(), form)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusAccepted, submitView{
		Status: checkout.StatusSubmitting,
		Order:  order,
	})
}

// Teardown handles DELETE /api/v1/checkout
func (h *CheckoutHandler) Teardown(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())
	sess.TeardownCheckout()
	httputil.WriteData(w, http.StatusOK, newCheckoutView(sess.Snapshot()))
}

// Acknowledge handles POST /api/v1/checkout/acknowledge
func (h *CheckoutHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	target, err := service.SessionFromContext(r.Context()).AcknowledgeOrder(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
