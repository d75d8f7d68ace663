package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates files under root from a relative path → content map.
func writeTree(t *testing.T, root string, structure map[string]string) {
	t.Helper()
	for rel, content := range structure {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

func relPaths(t *testing.T, root string, files []ImageFile) []string {
	t.Helper()
	rels := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		if err != nil {
			t.Fatalf("Rel(%s) failed: %v", f.Path, err)
		}
		rels = append(rels, filepath.ToSlash(rel))
	}
	return rels
}

func TestScan(t *testing.T) {
	root := t.TempDir()

	writeTree(t, root, map[string]string{
		"b.jpg":                     "jpeg",
		"a.PNG":                     "png",
		"2023/summer/beach.JPEG":    "jpeg",
		"2023/summer/notes.txt":     "text (ignored)",
		"2023/scan.tif":             "tiff",
		"2022/phone/IMG_0001.HEIC":  "heic",
		"2022/phone/clip.mp4":       "video (ignored)",
		"misc/anim.gif":             "gif",
		"misc/raw.bmp":              "bmp",
		"misc/pic.webp":             "webp",
		"misc/pic.tiff":             "tiff",
		"misc/no_extension":         "ignored",
		"misc/archive.jpg.zip":      "ignored",
		".hidden/secret.jpg":        "hidden files are still images",
		"deeply/nested/dir/img.jpg": "nested",
	})

	files, err := Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	resolved, _ := filepath.EvalSymlinks(root)
	got := relPaths(t, resolved, files)
	want := []string{
		".hidden/secret.jpg",
		"2022/phone/IMG_0001.HEIC",
		"2023/scan.tif",
		"2023/summer/beach.JPEG",
		"a.PNG",
		"b.jpg",
		"deeply/nested/dir/img.jpg",
		"misc/anim.gif",
		"misc/pic.tiff",
		"misc/pic.webp",
		"misc/raw.bmp",
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d files, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected file %d to be %s, got %s", i, want[i], got[i])
		}
	}

	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("Expected absolute path, got %s", f.Path)
		}
	}
	if files[0].Ext != ".jpg" {
		t.Errorf("Expected lowercased extension .jpg, got %s", files[0].Ext)
	}
	if files[1].Ext != ".heic" {
		t.Errorf("Expected lowercased extension .heic, got %s", files[1].Ext)
	}
	if files[5].Name() != "b.jpg" {
		t.Errorf("Expected Name b.jpg, got %s", files[5].Name())
	}
}

func TestScanEmpty(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"readme.txt": "no images"})

	files, err := Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files, got %d", len(files))
	}
}

func TestScanSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real/photo.jpg": "jpeg"})

	if err := os.Symlink(filepath.Join(root, "real", "photo.jpg"), filepath.Join(root, "link.jpg")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	// A directory cycle must not be followed
	if err := os.Symlink(root, filepath.Join(root, "real", "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	files, err := Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected only the real file, got %d files", len(files))
	}
	if files[0].Name() != "photo.jpg" {
		t.Errorf("Expected photo.jpg, got %s", files[0].Name())
	}
}

func TestScanSymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	library := filepath.Join(base, "library")
	writeTree(t, library, map[string]string{"photo.jpg": "jpeg"})

	link := filepath.Join(base, "link")
	if err := os.Symlink(library, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	files, err := Scan(context.Background(), link)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected 1 file through symlinked root, got %d", len(files))
	}
}

func TestScanUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ok/a.jpg":     "jpeg",
		"locked/b.jpg": "jpeg",
	})

	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	defer os.Chmod(locked, 0o755)

	files, err := Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Expected unreadable subdirectory to be skipped, got %v", err)
	}
	if len(files) != 1 || files[0].Name() != "a.jpg" {
		t.Errorf("Expected only a.jpg, got %v", files)
	}
}

func TestScanRootErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"file.jpg": "jpeg"})

	if _, err := Scan(context.Background(), filepath.Join(root, "missing")); err == nil {
		t.Error("Expected error for missing root")
	}

	_, err := Scan(context.Background(), filepath.Join(root, "file.jpg"))
	if !errors.Is(err, ErrNotDirectory) {
		t.Errorf("Expected ErrNotDirectory for file root, got %v", err)
	}
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.jpg": "jpeg"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
