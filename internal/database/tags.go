package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"autotagger/internal/logging"
)

// ListTags returns all tags with the number of photos carrying each, ordered
// by name.
func (d *Database) ListTags(ctx context.Context) ([]Tag, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_tags", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.id, t.name, COUNT(l.photo_id) AS photo_count
		FROM Tags t
		LEFT JOIN Photo_Tags_Link l ON t.id = l.tag_id
		GROUP BY t.id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	tags := []Tag{}
	for rows.Next() {
		var tag Tag
		if err = rows.Scan(&tag.ID, &tag.Name, &tag.PhotoCount); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	err = rows.Err()
	return tags, err
}

// PhotosByTag returns one page of the photos linked to tagName, ordered by
// capture time then path. page is 1-based; pageSize is clamped to [1, 200]
// with 50 as the default.
func (d *Database) PhotosByTag(ctx context.Context, tagName string, page, pageSize int) (*PhotoPage, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("photos_by_tag", start, err) }()

	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		err = ErrEmptyTagName
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var totalItems int
	err = d.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM Photo_Tags_Link l
		INNER JOIN Tags t ON l.tag_id = t.id
		WHERE t.name = ?
	`, tagName).Scan(&totalItems)
	if err != nil {
		return nil, err
	}

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	offset := (page - 1) * pageSize

	rows, err := d.db.QueryContext(ctx, `
		SELECT p.id, p.image_path, p.file_name, p.created_at, p.location, p.rotation
		FROM PhotoMetadata p
		INNER JOIN Photo_Tags_Link l ON p.id = l.photo_id
		INNER JOIN Tags t ON l.tag_id = t.id
		WHERE t.name = ?
		ORDER BY p.created_at, p.image_path
		LIMIT ? OFFSET ?
	`, tagName, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	items := []Photo{}
	for rows.Next() {
		var p Photo
		if p, err = scanPhoto(rows); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &PhotoPage{
		Tag:        tagName,
		Items:      items,
		TotalItems: totalItems,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// GetPhotoByPath retrieves a single photo by its image path. It returns
// sql.ErrNoRows when the path is not in the library.
func (d *Database) GetPhotoByPath(ctx context.Context, path string) (*Photo, error) {
	start := time.Now()
	var err error
	defer func() {
		if errors.Is(err, sql.ErrNoRows) {
			recordQuery("get_photo", start, nil)
			return
		}
		recordQuery("get_photo", start, err)
	}()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx, `
		SELECT id, image_path, file_name, created_at, location, rotation
		FROM PhotoMetadata WHERE image_path = ?
	`, path)

	p, err := scanPhoto(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPhotoTags returns the names of the tags linked to a photo, ordered by
// name.
func (d *Database) GetPhotoTags(ctx context.Context, photoID int64) ([]string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("photo_tags", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name
		FROM Tags t
		INNER JOIN Photo_Tags_Link l ON t.id = l.tag_id
		WHERE l.photo_id = ?
		ORDER BY t.name
	`, photoID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Error("error closing rows: %v", err)
		}
	}()

	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	err = rows.Err()
	return names, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPhoto reads one PhotoMetadata row. Columns written by older tools may
// be NULL.
func scanPhoto(row rowScanner) (Photo, error) {
	var (
		p         Photo
		fileName  sql.NullString
		createdAt sql.NullString
		location  sql.NullString
		rotation  sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.ImagePath, &fileName, &createdAt, &location, &rotation); err != nil {
		return Photo{}, err
	}
	p.FileName = fileName.String
	p.CreatedAt = createdAt.String
	p.Location = location.String
	p.Rotation = int(rotation.Int64)
	return p, nil
}
