package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/metrics"
)

var objectIDSegment = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)

// Metrics records request latency and status per route. Object ids in the
// path are collapsed so label cardinality stays bounded.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.Observe(r.Method, RouteLabel(r.URL.Path), wrapped.statusCode, time.Since(start))
		})
	}
}

func RouteLabel(path string) string {
	return objectIDSegment.ReplaceAllString(path, "/:id$1")
}
