package middleware

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/nandasafiq/hospital-management/internal/ratelimit"
)

// RateLimit rejects requests over the sliding-window limit for their endpoint
// class with 429. The limiter keys on the source address, so proxies in front
// of the service must pass the real client address through.
func RateLimit(limiter *ratelimit.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := clientAddr(r)
			class := ratelimit.ClassifyPath(r.URL.Path)

			if !limiter.Allow(addr, class) {
				logger.Warn("rate limit exceeded",
					"ip_address", addr,
					"endpoint_class", string(class),
					"path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error": "Rate limit exceeded. Please try again later."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
