package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/debounce"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]domain.Product{
		{ID: "1", Name: "Wireless Headphones", Category: "Electronics", Price: decimal.RequireFromString("10.00")},
		{ID: "2", Name: "Cotton T-Shirt", Category: "Clothing", Price: decimal.RequireFromString("20.00")},
		{ID: "3", Name: "Desk Lamp", Category: "Home", Price: decimal.RequireFromString("5.50")},
	})
	require.NoError(t, err)
	return c
}

// envelope mirrors httputil.Response with a typed payload.
type envelope[T any] struct {
	Data  T                       `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env), rec.Body.String())
	return env.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var env envelope[json.RawMessage]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NotNil(t, env.Error, "expected an error envelope")
	return env.Error
}

// testServer is the full router over an in-memory store.
type testServer struct {
	t        *testing.T
	handler  http.Handler
	sessions *service.SessionManager
	repo     *memory.SnapshotRepository
	clock    *debounce.ManualClock
	catalog  *catalog.Catalog
}

type serverOption func(*service.SessionConfig)

func withSubmitter(s checkout.Submitter) serverOption {
	return func(c *service.SessionConfig) { c.Submitter = s }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	cat := testCatalog(t)
	repo := memory.NewSnapshotRepository()
	clock := debounce.NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	cfg := service.SessionConfig{
		Catalog:     cat,
		Repo:        repo,
		Submitter:   checkout.SubmitterFunc(func(context.Context, checkout.Order) error { return nil }),
		SearchDelay: 300 * time.Millisecond,
		Clock:       clock,
		Logger:      testLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	sessions := service.NewSessionManager(cfg, time.Hour)
	t.Cleanup(sessions.Close)

	return &testServer{
		t: t,
		handler: NewRouter(RouterConfig{
			Catalog:  cat,
			Sessions: sessions,
			Health:   health.NewHandler(),
			Logger:   testLogger(),
			CORS:     middleware.DefaultCORSConfig(),
		}),
		sessions: sessions,
		repo:     repo,
		clock:    clock,
		catalog:  cat,
	}
}

// do sends a request as the given session; an empty session lets the
// server issue one.
func (s *testServer) do(method, path, session string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var r io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.SessionIDHeader, session)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) addItem(session, productID string) {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/cart/items", session, map[string]string{"product_id": productID})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (s *testServer) cart(session string) cartView {
	s.t.Helper()
	rec := s.do(http.MethodGet, "/api/v1/cart", session, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeData[cartView](s.t, rec)
}

func newRawRequest(method, path, body string) *http.Request {
	return httptest.NewRequest(method, path, bytes.NewBufferString(body))
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// farFuture is well past any idle TTL used in these tests.
func farFuture() time.Time {
	return time.Now().Add(365 * 24 * time.Hour)
}
