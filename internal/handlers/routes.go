package handlers

import (
	"net/http"

	"autotagger/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig selects optional routes and middleware
type RouterConfig struct {
	MetricsEnabled bool
}

// Router registers every control API route.
func (h *Handlers) Router(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/runs", h.StartRun).Methods(http.MethodPost).Name("start-run")
	api.HandleFunc("/runs/current", h.GetRun).Methods(http.MethodGet).Name("get-run")
	api.HandleFunc("/runs/current", h.CancelRun).Methods(http.MethodDelete).Name("cancel-run")
	api.HandleFunc("/tags", h.ListTags).Methods(http.MethodGet).Name("list-tags")
	api.HandleFunc("/tags/{tag}/photos", h.PhotosByTag).Methods(http.MethodGet).Name("photos-by-tag")
	api.HandleFunc("/photos", h.GetPhoto).Methods(http.MethodGet).Name("get-photo")

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead).Name("livez")
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet).Name("version")
	if cfg.MetricsEnabled {
		// Scrapes the default registry that internal/metrics registers on
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")
	}

	return r
}
