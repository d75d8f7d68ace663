// Package database provides SQLite storage for a tagged photo library.
//
// Each scanned folder gets its own library file (photo_library.db by default)
// holding three tables:
//   - PhotoMetadata: one row per image, keyed by image_path
//   - Tags: unique tag names
//   - Photo_Tags_Link: photo to tag links, unique per pair
//
// plus a metadata key/value table used for last-run bookkeeping.
//
// Writes go through a [Batch], which wraps one transaction; every write is
// idempotent per logical key so re-running a scan over an unchanged folder
// leaves row counts unchanged. The database uses WAL mode with
// synchronous=NORMAL and enforces foreign keys.
package database
