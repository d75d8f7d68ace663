package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autotagger/internal/indexer"
	"autotagger/internal/startup"
)

func TestHealthCheckIdle(t *testing.T) {
	h, _ := newTestHandlers(t, newBlockingExtractor())

	w := serve(h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var response HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != statusHealthy {
		t.Errorf("Expected status %s, got %s", statusHealthy, response.Status)
	}
	if response.Running {
		t.Error("Expected no run")
	}
	if response.Phase != indexer.PhaseIdle {
		t.Errorf("Expected idle phase, got %s", response.Phase)
	}
	if response.Version != startup.Version {
		t.Errorf("Expected version %s, got %s", startup.Version, response.Version)
	}
	if response.NumCPU < 1 || response.GoVersion == "" {
		t.Errorf("Expected system info, got %+v", response)
	}
}

func TestLivenessCheck(t *testing.T) {
	h, _ := newTestHandlers(t, newBlockingExtractor())

	tests := []struct {
		method   string
		wantBody bool
	}{
		{http.MethodGet, true},
		{http.MethodHead, false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(h, tt.method, "/livez", "")
			if w.Code != http.StatusOK {
				t.Errorf("Expected 200, got %d", w.Code)
			}
			hasBody := strings.Contains(w.Body.String(), `"alive"`)
			if hasBody != tt.wantBody {
				t.Errorf("Expected body=%v, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	h, _ := newTestHandlers(t, newBlockingExtractor())

	w := serve(h, http.MethodGet, "/version", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("Cache-Control") != "no-cache" {
		t.Error("Expected Cache-Control no-cache")
	}

	var info startup.BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode build info: %v", err)
	}
	if info != startup.GetBuildInfo() {
		t.Errorf("Expected %+v, got %+v", startup.GetBuildInfo(), info)
	}
}

func TestMetricsRoute(t *testing.T) {
	h, _ := newTestHandlers(t, newBlockingExtractor())

	w := serve(h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "autotagger_pipeline_running") {
		t.Error("Expected pipeline metrics in scrape output")
	}

	router := h.Router(RouterConfig{MetricsEnabled: false})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with metrics disabled, got %d", w.Code)
	}
}

func TestRouterMethods(t *testing.T) {
	h, _ := newTestHandlers(t, newBlockingExtractor())

	w := serve(h, http.MethodPut, "/api/runs", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for PUT /api/runs, got %d", w.Code)
	}
}
