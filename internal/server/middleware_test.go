package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calmeet/calmeet/internal/instrumentation"
)

func TestResponseWriter(t *testing.T) {
	t.Run("defaults to 200", func(t *testing.T) {
		rw := newResponseWriter(httptest.NewRecorder())

		if rw.statusCode != http.StatusOK {
			t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusOK)
		}
	})

	t.Run("passes write header to underlying writer", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := newResponseWriter(rec)

		rw.WriteHeader(http.StatusCreated)

		if rw.statusCode != http.StatusCreated {
			t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusCreated)
		}
		if rec.Code != http.StatusCreated {
			t.Errorf("rec.Code = %d, want %d", rec.Code, http.StatusCreated)
		}
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	t.Run("passes handler through when no metrics", func(t *testing.T) {
		called := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			called = true
		})

		handler := HTTPMetricsMiddleware(nil, next)
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/mcp", nil))

		if !called {
			t.Error("expected next handler to be called")
		}
	})

	t.Run("records request and preserves status", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
			ServiceName:     "test-service",
			ServiceVersion:  "1.0.0",
			Enabled:         true,
			MetricsExporter: "prometheus",
			TracingExporter: "none",
		})
		if err != nil {
			t.Fatalf("failed to create provider: %v", err)
		}
		t.Cleanup(func() { _ = provider.Shutdown(ctx) })

		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		handler := HTTPMetricsMiddleware(provider.Metrics(), next)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
		}
	})
}
