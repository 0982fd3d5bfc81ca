package httpadapter

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// rateLimitMiddleware rejects requests above the configured rate with 429.
// Health and metrics probes are exempt so operators can always scrape.
func rateLimitMiddleware(next http.Handler, rps float64, burst int) http.Handler {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// backpressureMiddleware caps concurrent in-flight requests. A request that
// cannot acquire a slot within maxWait gets 503 instead of queueing
// unboundedly.
func backpressureMiddleware(next http.Handler, maxConcurrent int, maxWait time.Duration) http.Handler {
	if maxConcurrent <= 0 {
		return next
	}
	slots := make(chan struct{}, maxConcurrent)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := time.NewTimer(maxWait)
		defer timer.Stop()

		select {
		case slots <- struct{}{}:
			defer func() { <-slots }()
			next.ServeHTTP(w, r)
		case <-timer.C:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server overloaded, retry later"})
		case <-r.Context().Done():
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "request cancelled while waiting for capacity"})
		}
	})
}
