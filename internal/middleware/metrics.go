package middleware

import (
	"net/http"
	"strconv"
	"time"

	"autotagger/internal/metrics"

	"github.com/gorilla/mux"
)

// Label used for requests that matched no route
const unmatchedRoute = "unmatched"

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipRoutes are route templates that are not recorded
	SkipRoutes map[string]bool
}

// DefaultMetricsConfig skips the scrape and probe endpoints.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipRoutes: map[string]bool{"/metrics": true, "/health": true, "/livez": true},
	}
}

// Metrics returns middleware that records Prometheus request metrics. It
// must be installed with (*mux.Router).Use so the matched route is known;
// paths are labelled by route template, so tag names and folders never
// become label values.
func Metrics(config MetricsConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeTemplate(r)
			if config.SkipRoutes[route] {
				next.ServeHTTP(w, r)
				return
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newResponseWriter(w)
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}
	tmpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}
	return tmpl
}
