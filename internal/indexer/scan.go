package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"autotagger/internal/logging"
	"autotagger/internal/mediatypes"
	"autotagger/internal/metrics"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("scan root is not a directory")

// ImageFile is one image discovered by Scan.
type ImageFile struct {
	// Path is absolute.
	Path string
	// Ext is the lowercased extension including the dot.
	Ext string
}

// Name returns the base file name.
func (f ImageFile) Name() string {
	return filepath.Base(f.Path)
}

// Scan walks root recursively and returns every regular file whose extension
// is in the image allow-list, in lexical order. Symlinks are not followed.
// Unreadable entries below root are logged and skipped; failure to read root
// itself is returned.
func Scan(ctx context.Context, root string) ([]ImageFile, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	// The root may itself be a symlink to the library
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	}

	var files []ImageFile
	skipped := 0

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if path == abs {
				return walkErr
			}
			skipped++
			logging.Warn("Skipping unreadable entry %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		if !mediatypes.IsImage(d.Name()) {
			return nil
		}

		files = append(files, ImageFile{
			Path: path,
			Ext:  mediatypes.NormalizeExt(d.Name()),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		logging.Warn("Scan of %s skipped %d unreadable entries", abs, skipped)
	}
	metrics.PipelineFilesScanned.Add(float64(len(files)))
	logging.Debug("Scan of %s found %d images", abs, len(files))

	return files, nil
}
