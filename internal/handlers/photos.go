package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"

	"autotagger/internal/database"
	"autotagger/internal/logging"
	"autotagger/internal/mediatypes"
)

// PhotoResponse is one photo row with its linked tags.
type PhotoResponse struct {
	database.Photo
	MimeType string   `json:"mimeType"`
	Tags     []string `json:"tags"`
}

// GetPhoto looks up one photo by path. A relative path is resolved against
// the folder parameter.
func (h *Handlers) GetPhoto(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}

	db, folder, err := h.openLibrary(r)
	if err != nil {
		h.writeLibraryError(w, folder, err)
		return
	}
	defer closeLibrary(db)

	if !filepath.IsAbs(path) {
		path = filepath.Join(folder, path)
	}
	path = filepath.Clean(path)

	photo, err := db.GetPhotoByPath(r.Context(), path)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSONError(w, "Photo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("Failed to get photo %s: %v", path, err)
		writeJSONError(w, "Failed to get photo", http.StatusInternalServerError)
		return
	}

	tags, err := db.GetPhotoTags(r.Context(), photo.ID)
	if err != nil {
		logging.Error("Failed to get tags for photo %d: %v", photo.ID, err)
		writeJSONError(w, "Failed to get photo tags", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, http.StatusOK, PhotoResponse{
		Photo:    *photo,
		MimeType: mediatypes.GetMimeType(mediatypes.NormalizeExt(photo.FileName)),
		Tags:     tags,
	})
}
