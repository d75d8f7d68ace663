package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"autotagger/internal/indexer"
	"autotagger/internal/logging"
)

// Upper bound on a start-run request body
const maxRunRequestBytes = 64 << 10

// RunRequest starts a tagging run
type RunRequest struct {
	Folder string `json:"folder"`
}

// StartRun starts tagging the requested folder in the background.
func (h *Handlers) StartRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRunRequestBytes)).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	folder := strings.TrimSpace(req.Folder)
	if folder == "" {
		writeJSONError(w, "Folder is required", http.StatusBadRequest)
		return
	}

	err := h.controller.Start(folder)
	switch {
	case errors.Is(err, indexer.ErrRunInProgress):
		writeJSONError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, indexer.ErrInvalidFolder):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logging.Error("Failed to start run for %s: %v", folder, err)
		writeJSONError(w, "Failed to start run", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, http.StatusAccepted, h.controller.Status())
}

// CancelRun requests cancellation of the active run.
func (h *Handlers) CancelRun(w http.ResponseWriter, _ *http.Request) {
	if !h.controller.Cancel() {
		writeJSONError(w, "No run in progress", http.StatusConflict)
		return
	}
	writeJSONStatus(w, http.StatusAccepted, h.controller.Status())
}

// GetRun returns the status of the current or last run.
func (h *Handlers) GetRun(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONStatus(w, http.StatusOK, h.controller.Status())
}
