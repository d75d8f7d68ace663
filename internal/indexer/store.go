package indexer

import (
	"context"

	"autotagger/internal/database"
)

// Store is the persistence the pipeline writes through.
type Store interface {
	Path() string
	Begin(ctx context.Context) (Batch, error)
	Counts(ctx context.Context) (database.Counts, error)
	SetLastRun(ctx context.Context, run database.LastRun) error
	Close() error
}

// Batch is one store transaction.
type Batch interface {
	TagStore
	UpsertPhoto(ctx context.Context, p database.Photo) (int64, error)
	LinkPhotoTag(ctx context.Context, photoID, tagID int64) error
	Commit() error
	Rollback() error
}

// OpenStoreFunc opens the store for a scanned folder.
type OpenStoreFunc func(ctx context.Context, folder, fileName string) (Store, error)

// OpenSQLite opens the SQLite library inside folder.
func OpenSQLite(ctx context.Context, folder, fileName string) (Store, error) {
	db, err := database.Open(ctx, folder, fileName)
	if err != nil {
		return nil, err
	}
	return sqliteStore{db}, nil
}

type sqliteStore struct {
	*database.Database
}

func (s sqliteStore) Begin(ctx context.Context) (Batch, error) {
	b, err := s.Database.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return b, nil
}
