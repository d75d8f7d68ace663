package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Metadata keys for run bookkeeping.
const (
	keyLastRunAt     = "last_run_at"
	keyLastRunPhotos = "last_run_photos"
	keyLastRunTags   = "last_run_tags"
	keyLastRunErrors = "last_run_errors"
)

// GetMetadata retrieves a metadata value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	start := time.Now()
	var err error
	defer func() {
		if errors.Is(err, sql.ErrNoRows) {
			recordQuery("get_metadata", start, nil)
			return
		}
		recordQuery("get_metadata", start, err)
	}()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value sql.NullString
	err = d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_metadata", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetLastRun returns the bookkeeping of the last finished run. ok is false
// when no run has been recorded in this library.
func (d *Database) GetLastRun(ctx context.Context) (run LastRun, ok bool, err error) {
	value, err := d.GetMetadata(ctx, keyLastRunAt)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == "") {
		return LastRun{}, false, nil
	}
	if err != nil {
		return LastRun{}, false, err
	}

	run.At, err = time.Parse(time.RFC3339, value)
	if err != nil {
		return LastRun{}, false, fmt.Errorf("invalid %s value %q: %w", keyLastRunAt, value, err)
	}

	counters := []struct {
		key string
		dst *int
	}{
		{keyLastRunPhotos, &run.Photos},
		{keyLastRunTags, &run.Tags},
		{keyLastRunErrors, &run.Errors},
	}
	for _, c := range counters {
		value, err := d.GetMetadata(ctx, c.key)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return LastRun{}, false, err
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return LastRun{}, false, fmt.Errorf("invalid %s value %q: %w", c.key, value, err)
		}
		*c.dst = n
	}
	return run, true, nil
}

// SetLastRun stores the bookkeeping of a finished run.
func (d *Database) SetLastRun(ctx context.Context, run LastRun) error {
	values := []struct {
		key   string
		value string
	}{
		{keyLastRunAt, run.At.UTC().Format(time.RFC3339)},
		{keyLastRunPhotos, strconv.Itoa(run.Photos)},
		{keyLastRunTags, strconv.Itoa(run.Tags)},
		{keyLastRunErrors, strconv.Itoa(run.Errors)},
	}
	for _, v := range values {
		if err := d.SetMetadata(ctx, v.key, v.value); err != nil {
			return fmt.Errorf("failed to store %s: %w", v.key, err)
		}
	}
	return nil
}
