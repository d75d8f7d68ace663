package handlers

import (
	"net/http"
	"runtime"
	"time"

	"autotagger/internal/indexer"
	"autotagger/internal/startup"
)

const statusHealthy = "healthy"

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Run info
	Running   bool          `json:"running"`
	Phase     indexer.Phase `json:"phase"`
	Folder    string        `json:"folder,omitempty"`
	LastError string        `json:"lastError,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. A failed last run
// is reported but does not make the service unhealthy.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	status := h.controller.Status()

	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Running:      status.Running,
		Phase:        status.Phase,
		Folder:       status.Folder,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if status.Summary != nil {
		response.LastError = status.Summary.Error
	}

	writeJSONStatus(w, http.StatusOK, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}
