package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

// maxSessionIDLen bounds client-chosen session IDs.
const maxSessionIDLen = 128

// Sessions attaches the caller's session to the request context. The
// session is named by the X-Session-ID header; without one a new ID is
// issued. Either way the ID is echoed in the response header.
func Sessions(m *service.SessionManager, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(middleware.SessionIDHeader))
			if id == "" {
				id = uuid.New().String()
			}
			if len(id) > maxSessionIDLen || strings.ContainsAny(id, " \t\r\n") {
				httputil.WriteError(w, r, apperrors.InvalidInput("invalid session id"), l)
				return
			}
			w.Header().Set(middleware.SessionIDHeader, id)

			sess, err := m.Session(r.Context(), id)
			if err != nil {
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) {
					logger.FromContext(r.Context()).ErrorContext(r.Context(), "failed to open session",
						slog.String("session_id", id),
						slog.String("error", err.Error()),
					)
					err = apperrors.ServiceUnavailable("cart storage is unavailable")
				}
				httputil.WriteError(w, r, err, l)
				return
			}

			ctx := service.WithSession(r.Context(), sess)
			if logger.SessionIDFromContext(ctx) == "" {
				ctx = logger.WithSessionID(ctx, id)
				ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("session_id", id)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
