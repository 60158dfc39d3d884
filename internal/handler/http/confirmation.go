package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// ConfirmationHandler exposes the session's confirmation dialog.
type ConfirmationHandler struct {
	logger *slog.Logger
}

// NewConfirmationHandler creates a new confirmation HTTP handler.
func NewConfirmationHandler(logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{logger: logger}
}

// ConfirmRequest optionally names the dialog being answered.
type ConfirmRequest struct {
	ID string `json:"id" validate:"omitempty,max=64"`
}

// KeyRequest is a key pressed while the dialog is open.
type KeyRequest struct {
	Key string `json:"key" validate:"required,max=32"`
}

// GetConfirmation handles GET /api/v1/confirmation
func (h *ConfirmationHandler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	req, ok := service.SessionFromContext(r.Context()).Confirmation()
	httputil.WriteData(w, http.StatusOK, newConfirmationView(req, ok))
}

// Confirm handles POST /api/v1/confirmation/confirm and answers with the
// cart as it stands after the action ran.
func (h *ConfirmationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess := service.SessionFromContext(r.Context())
	if err := sess.Confirm(r.Context(), req.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	snap := sess.Snapshot()
	httputil.WriteData(w, http.StatusOK, newCartView(snap, cartItems(snap.Cart.Items)))
}

// Cancel handles POST /api/v1/confirmation/cancel
func (h *ConfirmationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())
	sess.CancelConfirmation()
	h.writeState(w, sess)
}

// KeyPress handles POST /api/v1/confirmation/keys
func (h *ConfirmationHandler) KeyPress(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess := service.SessionFromContext(r.Context())
	sess.KeyPress(req.Key)
	h.writeState(w, sess)
}

// Dismiss handles DELETE /api/v1/confirmation
func (h *ConfirmationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())
	sess.DismissConfirmation()
	h.writeState(w, sess)
}

func (h *ConfirmationHandler) writeState(w http.ResponseWriter, sess *service.Session) {
	req, ok := sess.Confirmation()
	httputil.WriteData(w, http.StatusOK, newConfirmationView(req, ok))
}
