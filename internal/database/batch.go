package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"autotagger/internal/metrics"
)

// ErrEmptyTagName is returned when a tag name is blank after trimming.
var ErrEmptyTagName = errors.New("tag name cannot be empty")

// ErrBatchClosed is returned by Batch methods after Commit or Rollback.
var ErrBatchClosed = errors.New("batch already committed or rolled back")

// Batch groups writes into one transaction. A Batch is not safe for
// concurrent use; the tagging pipeline drives it from a single goroutine.
type Batch struct {
	tx     *sql.Tx
	start  time.Time
	closed bool
}

// Begin starts a transaction for batch operations. The caller must finish it
// with Commit, Rollback or End.
//
// The transaction is detached from ctx cancellation: once begun it runs to
// Commit even if the run is cancelled meanwhile.
func (d *Database) Begin(ctx context.Context) (*Batch, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("begin_transaction", start, err) }()

	// Only protect transaction creation
	d.mu.Lock()
	tx, err := d.db.BeginTx(context.WithoutCancel(ctx), nil)
	d.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Batch{tx: tx, start: start}, nil
}

// UpsertPhoto inserts or updates the photo keyed by its ImagePath and returns
// its row id. A blank FileName is derived from the path and a blank Location
// becomes UnknownLocation. Rotation is never overwritten on update.
func (b *Batch) UpsertPhoto(ctx context.Context, p Photo) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_photo", start, err) }()

	if b.closed {
		err = ErrBatchClosed
		return 0, err
	}
	if p.ImagePath == "" {
		err = errors.New("photo image path cannot be empty")
		return 0, err
	}
	if p.FileName == "" {
		p.FileName = filepath.Base(p.ImagePath)
	}
	if p.Location == "" {
		p.Location = UnknownLocation
	}

	var id int64
	err = b.tx.QueryRowContext(ctx, `
		INSERT INTO PhotoMetadata (image_path, file_name, created_at, location)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(image_path) DO UPDATE SET
			file_name = excluded.file_name,
			created_at = excluded.created_at,
			location = excluded.location
		RETURNING id
	`, p.ImagePath, p.FileName, p.CreatedAt, p.Location).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert photo %s: %w", p.ImagePath, err)
	}
	return id, nil
}

// GetOrCreateTag returns the id of the tag with the given name, creating it
// when missing. created reports whether this call inserted the row.
func (b *Batch) GetOrCreateTag(ctx context.Context, name string) (id int64, created bool, err error) {
	start := time.Now()
	defer func() { recordQuery("get_or_create_tag", start, err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, ErrEmptyTagName
	}
	if b.closed {
		return 0, false, ErrBatchClosed
	}

	result, err := b.tx.ExecContext(ctx,
		"INSERT INTO Tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING",
		name,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create tag %q: %w", name, err)
	}

	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows == 1 {
		if id, err = result.LastInsertId(); err == nil {
			return id, true, nil
		}
	}

	err = b.tx.QueryRowContext(ctx, "SELECT id FROM Tags WHERE name = ?", name).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}
	return id, false, nil
}

// LinkPhotoTag links a photo to a tag. Linking an existing pair is a no-op.
func (b *Batch) LinkPhotoTag(ctx context.Context, photoID, tagID int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("link_photo_tag", start, err) }()

	if b.closed {
		err = ErrBatchClosed
		return err
	}

	_, err = b.tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO Photo_Tags_Link (photo_id, tag_id) VALUES (?, ?)",
		photoID, tagID,
	)
	if err != nil {
		return fmt.Errorf("failed to link photo %d to tag %d: %w", photoID, tagID, err)
	}
	return nil
}

// Commit commits the transaction.
func (b *Batch) Commit() error {
	start := time.Now()
	var err error
	defer func() { recordQuery("commit", start, err) }()

	if b.closed {
		err = ErrBatchClosed
		return err
	}
	b.closed = true

	if err = b.tx.Commit(); err != nil {
		metrics.DBTransactionsTotal.WithLabelValues("rollback").Inc()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	metrics.DBTransactionsTotal.WithLabelValues("commit").Inc()
	return nil
}

// Rollback abandons the transaction. Rolling back a finished batch is a no-op.
func (b *Batch) Rollback() error {
	if b.closed {
		return nil
	}
	start := time.Now()
	b.closed = true

	err := b.tx.Rollback()
	recordQuery("rollback", start, err)
	metrics.DBTransactionsTotal.WithLabelValues("rollback").Inc()
	return err
}

// End commits when err is nil and rolls back otherwise, returning err joined
// with any rollback failure.
func (b *Batch) End(err error) error {
	if err != nil {
		if rbErr := b.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}
	return b.Commit()
}

// Elapsed reports how long the batch has been open.
func (b *Batch) Elapsed() time.Duration {
	return time.Since(b.start)
}
