package handlers

import (
	"time"

	"autotagger/internal/database"
	"autotagger/internal/indexer"
)

type Handlers struct {
	controller *indexer.Controller
	dbName     string
	startTime  time.Time
}

// New creates handlers driving controller. dbName is the library file name
// looked up inside folders passed to the tag endpoints.
func New(controller *indexer.Controller, dbName string) *Handlers {
	if dbName == "" {
		dbName = database.DefaultFileName
	}
	return &Handlers{
		controller: controller,
		dbName:     dbName,
		startTime:  time.Now(),
	}
}
