package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"autotagger/internal/logging"
	"autotagger/internal/metrics"
)

const (
	// DefaultFileName is the library database created inside a scanned folder.
	DefaultFileName = "photo_library.db"

	// UnknownLocation is stored, and used as a tag, for photos without a
	// resolvable GPS location.
	UnknownLocation = "Unknown Location"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database manages the photo library store.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New opens (creating if needed) the library database at dbPath and ensures
// the schema exists. dbPath is the full path to the database FILE; its parent
// directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors when a reader
	// (the tags command or the HTTP API) opens the library during a run
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One writer at a time; a couple of extra connections let read queries
	// proceed while a batch transaction is open
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

// Open opens the library database that lives inside folder.
func Open(ctx context.Context, folder, fileName string) (*Database, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return New(ctx, filepath.Join(folder, fileName))
}

func (d *Database) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	// Table and index names match the layout other tools already read
	schema := `
	CREATE TABLE IF NOT EXISTS PhotoMetadata (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		image_path TEXT UNIQUE NOT NULL,
		file_name TEXT,
		created_at TEXT,
		location TEXT,
		rotation INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS Tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS Photo_Tags_Link (
		photo_id INTEGER,
		tag_id INTEGER,
		FOREIGN KEY (photo_id) REFERENCES PhotoMetadata (id),
		FOREIGN KEY (tag_id) REFERENCES Tags (id),
		UNIQUE (photo_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_photo_id ON Photo_Tags_Link(photo_id);
	CREATE INDEX IF NOT EXISTS idx_tag_id ON Photo_Tags_Link(tag_id);

	-- Run bookkeeping
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	d.mu.Lock()
	defer d.mu.Unlock()

	_, err = d.db.ExecContext(ctx, schema)
	return err
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Counts returns the number of rows in each library table.
func (d *Database) Counts(ctx context.Context) (Counts, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("counts", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c Counts
	err = d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM PhotoMetadata),
			(SELECT COUNT(*) FROM Tags),
			(SELECT COUNT(*) FROM Photo_Tags_Link)
	`).Scan(&c.Photos, &c.Tags, &c.Links)
	return c, err
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}
	if !dirInfo.IsDir() {
		return fmt.Errorf("database parent %s is not a directory", dir)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	if dbInfo, err := os.Stat(dbPath); err == nil {
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", dbPath, dbInfo.Mode(), dbInfo.Size())
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("Database file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	// A read-only WAL file left behind by another user breaks every write
	walPath := dbPath + "-wal"
	if walInfo, err := os.Stat(walPath); err == nil {
		logging.Debug("WAL file exists: %s (mode: %v, size: %d bytes)", walPath, walInfo.Mode(), walInfo.Size())
		if walInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("WAL file is read-only! Mode: %v - this will cause write failures", walInfo.Mode())
		}
	}

	return nil
}
