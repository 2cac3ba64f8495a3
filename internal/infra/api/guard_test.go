//go:build !integration

package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"class-access/internal/infra/api"
	"class-access/internal/infra/logging"
)

func TestTraceID(t *testing.T) {
	var got string
	h := api.TraceID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logging.TraceIDFrom(r.Context())
	}))

	t.Run("reuses inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got != "abc" || rec.Header().Get("X-Request-ID") != "abc" {
			t.Fatalf("trace id not propagated: ctx=%q header=%q", got, rec.Header().Get("X-Request-ID"))
		}
	})

	t.Run("mints one when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if got == "" || rec.Header().Get("X-Request-ID") != got {
			t.Fatalf("expected a minted trace id, got %q", got)
		}
	})
}

func TestRecover(t *testing.T) {
	h := api.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }),
		api.RequestLog(nopLogger()),
		api.Recover(nopLogger()),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
}

func TestTimeout(t *testing.T) {
	var deadline bool
	h := api.Timeout(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !deadline {
		t.Fatal("expected a request deadline")
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	api.Health(func(ctx context.Context) error { return nil })(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("want 200 OK, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	api.Health(func(ctx context.Context) error { return errors.New("down") })(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", rec.Code)
	}
}
