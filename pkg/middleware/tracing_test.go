package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// tracedCartRouter installs an in-memory tracer provider and returns a chi
// router carrying the storefront cart and health routes behind Tracing.
func tracedCartRouter(t *testing.T, status int) (*chi.Mux, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	r := chi.NewRouter()
	r.Use(Tracing("storefront-test"))
	r.Post("/api/v1/cart/items/{id}/increase", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
	r.Post("/api/v1/cart/items", func(w http.ResponseWriter, _ *http.Request) {
		// Mirrors the session middleware issuing an ID to a header-less client.
		w.Header().Set(SessionIDHeader, "issued-sess")
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r, exporter
}

func onlySpan(t *testing.T, exporter *tracetest.InMemoryExporter) tracetest.SpanStub {
	t.Helper()
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	return spans[0]
}

func spanAttr(span tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_CartRouteSpanCarriesSession(t *testing.T) {
	router, exporter := tracedCartRouter(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items/42/increase", nil)
	req.Header.Set(SessionIDHeader, "sess-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, exporter)
	assert.Equal(t, "POST /api/v1/cart/items/{id}/increase", span.Name)
	assert.Equal(t, trace.SpanKindServer, span.SpanKind)

	route, ok := spanAttr(span, "http.route")
	require.True(t, ok)
	assert.Equal(t, "/api/v1/cart/items/{id}/increase", route.AsString())

	sid, ok := spanAttr(span, SessionAttribute)
	require.True(t, ok)
	assert.Equal(t, "sess-7", sid.AsString())

	code, ok := spanAttr(span, "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), code.AsInt64())
}

func TestTracing_RecordsIssuedSession(t *testing.T) {
	router, exporter := tracedCartRouter(t, http.StatusOK)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil))

	sid, ok := spanAttr(onlySpan(t, exporter), SessionAttribute)
	require.True(t, ok)
	assert.Equal(t, "issued-sess", sid.AsString())
}

func TestTracing_NoSessionOmitsAttribute(t *testing.T) {
	router, exporter := tracedCartRouter(t, http.StatusOK)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	span := onlySpan(t, exporter)
	assert.Equal(t, "GET /health/live", span.Name)
	_, ok := spanAttr(span, SessionAttribute)
	assert.False(t, ok)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	router, exporter := tracedCartRouter(t, http.StatusServiceUnavailable)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items/9/increase", nil)
	req.Header.Set(SessionIDHeader, "sess-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, exporter)
	assert.Equal(t, codes.Error, span.Status.Code)
	code, _ := spanAttr(span, "http.status_code")
	assert.Equal(t, int64(http.StatusServiceUnavailable), code.AsInt64())
}

func TestTracing_ClientErrorLeavesStatusUnset(t *testing.T) {
	router, exporter := tracedCartRouter(t, http.StatusNotFound)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/cart/items/9/increase", nil))

	assert.Equal(t, codes.Unset, onlySpan(t, exporter).Status.Code)
}

func TestTracing_ContinuesClientTrace(t *testing.T) {
	router, exporter := tracedCartRouter(t, http.StatusOK)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items/1/increase", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	span := onlySpan(t, exporter)
	assert.Equal(t, traceID, span.SpanContext.TraceID().String())
	assert.True(t, span.Parent.IsRemote())
	assert.Contains(t, rec.Header().Get("traceparent"), traceID)
}
