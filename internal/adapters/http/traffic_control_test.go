package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitRejectsAboveBurst(t *testing.T) {
	handler := rateLimitMiddleware(okHandler(), 1, 1)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/search", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/search", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") != "1" {
		t.Fatalf("Retry-After = %q", second.Header().Get("Retry-After"))
	}
}

func TestRateLimitExemptsProbes(t *testing.T) {
	handler := rateLimitMiddleware(okHandler(), 1, 1)

	// Exhaust the burst.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/search", nil))

	for _, path := range []string{"/healthz", "/metrics"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want probes exempt", path, rec.Code)
		}
	}
}

func TestRateLimitDisabledWhenRPSZero(t *testing.T) {
	handler := rateLimitMiddleware(okHandler(), 0, 0)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
}

func TestBackpressureShedsWhenSaturated(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		w.WriteHeader(http.StatusOK)
	})
	handler := backpressureMiddleware(slow, 1, 20*time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))
	}()
	<-entered

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("saturated request status = %d, want 503", rec.Code)
	}

	close(release)
	wg.Wait()
}

func TestBackpressureReleasesSlots(t *testing.T) {
	handler := backpressureMiddleware(okHandler(), 1, 20*time.Millisecond)

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/search", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("sequential request %d status = %d", i, rec.Code)
		}
	}
}
