package middleware

import (
	"net/http"
	"time"

	"github.com/sakif/smartbio/internal/metrics"
)

// Metrics counts requests and observes their latency, labelled with the
// server name ("api" or "public") so the two listeners can be told apart.
func Metrics(c *metrics.Collector, server string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			c.ObserveRequest(server, r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
