package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"autotagger/internal/database"
	"autotagger/internal/logging"

	"github.com/gorilla/mux"
)

var errNoLibrary = errors.New("folder has no tag library")

// TagsResponse lists the tags of one library
type TagsResponse struct {
	Folder  string            `json:"folder"`
	Tags    []database.Tag    `json:"tags"`
	LastRun *database.LastRun `json:"lastRun,omitempty"`
}

// openLibrary opens the existing library inside the folder query parameter.
func (h *Handlers) openLibrary(r *http.Request) (*database.Database, string, error) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		return nil, "", errors.New("folder is required")
	}
	folder, err := filepath.Abs(folder)
	if err != nil {
		return nil, "", err
	}
	// Photo paths are stored with symlinks resolved
	if resolved, err := filepath.EvalSymlinks(folder); err == nil {
		folder = resolved
	}

	path := filepath.Join(folder, h.dbName)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, folder, errNoLibrary
	}

	db, err := database.New(r.Context(), path)
	if err != nil {
		return nil, folder, err
	}
	return db, folder, nil
}

func (h *Handlers) writeLibraryError(w http.ResponseWriter, folder string, err error) {
	switch {
	case errors.Is(err, errNoLibrary):
		writeJSONError(w, "No tag library in "+folder, http.StatusNotFound)
	case folder == "":
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logging.Error("Failed to open library in %s: %v", folder, err)
		writeJSONError(w, "Failed to open library", http.StatusInternalServerError)
	}
}

func closeLibrary(db *database.Database) {
	if err := db.Close(); err != nil {
		logging.Warn("Failed to close library %s: %v", db.Path(), err)
	}
}

// ListTags returns every tag in a folder's library with its photo count.
func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	db, folder, err := h.openLibrary(r)
	if err != nil {
		h.writeLibraryError(w, folder, err)
		return
	}
	defer closeLibrary(db)

	tags, err := db.ListTags(r.Context())
	if err != nil {
		logging.Error("Failed to list tags in %s: %v", folder, err)
		writeJSONError(w, "Failed to get tags", http.StatusInternalServerError)
		return
	}

	resp := TagsResponse{Folder: folder, Tags: tags}
	if run, ok, err := db.GetLastRun(r.Context()); err != nil {
		logging.Warn("Failed to read last run in %s: %v", folder, err)
	} else if ok {
		resp.LastRun = &run
	}

	writeJSONStatus(w, http.StatusOK, resp)
}

// PhotosByTag returns one page of the photos carrying a tag.
func (h *Handlers) PhotosByTag(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	db, folder, err := h.openLibrary(r)
	if err != nil {
		h.writeLibraryError(w, folder, err)
		return
	}
	defer closeLibrary(db)

	result, err := db.PhotosByTag(r.Context(), tag, page, pageSize)
	if errors.Is(err, database.ErrEmptyTagName) {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		logging.Error("Failed to get photos for tag %q in %s: %v", tag, folder, err)
		writeJSONError(w, "Failed to get photos", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, http.StatusOK, result)
}
