// Package middleware provides HTTP middleware shared by the API routes.
package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit applies a process-wide token bucket: rps sustained requests per
// second with the given burst capacity. Requests beyond the budget receive
// 429 Too Many Requests.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
