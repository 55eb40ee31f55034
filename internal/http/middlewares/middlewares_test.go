package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	// Minted when absent.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if seen == "" {
		t.Fatal("no request id in context")
	}
	if w.Header().Get("X-Request-ID") != seen {
		t.Fatalf("header %q != context %q", w.Header().Get("X-Request-ID"), seen)
	}

	// Honored when provided.
	w = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)
	r.Header.Set("X-Request-ID", "req-abc")
	h.ServeHTTP(w, r)
	if seen != "req-abc" {
		t.Fatalf("inbound id ignored: %q", seen)
	}
}

func TestWithRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), WithRecover())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestWithCORS(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), WithCORS([]string{"https://app.example.com"}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/organizations/", nil)
	r.Header.Set("Origin", "https://app.example.com")
	h.ServeHTTP(w, r)
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("allowed origin not echoed: %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/organizations/", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	h.ServeHTTP(w, r)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin allowed")
	}

	// Preflight short-circuits.
	wildcard := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight reached handler")
	}), WithCORS([]string{"*"}))
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodOptions, "/organizations/", nil)
	r.Header.Set("Origin", "https://anywhere.example.com")
	wildcard.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status: %d", w.Code)
	}
}
