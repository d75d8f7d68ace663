package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autotagger/internal/database"
	"autotagger/internal/exifmeta/exiftest"
	"autotagger/internal/indexer"
	"autotagger/internal/logging"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	level := logging.GetLevel()
	t.Cleanup(func() { logging.SetLevel(level) })

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "autotagger ") {
		t.Errorf("Expected version header, got %q", out)
	}
	if !strings.Contains(out, "commit:") {
		t.Errorf("Expected commit line, got %q", out)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	_, err := runCommand(t, "--workers=-3", "tags", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "workers") {
		t.Errorf("Expected workers validation error, got %v", err)
	}
}

func TestScanThenTags(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dir := t.TempDir()
	exiftest.WriteJPEG(t, dir, "beach.jpg", exiftest.Fixture{DateTimeOriginal: "2023:05:10 14:22:01", GPS: exiftest.Sydney()})
	exiftest.WriteJPEG(t, dir, "city.jpg", exiftest.Fixture{DateTimeOriginal: "2023:08:01 09:00:00"})

	if _, err := runCommand(t, "--exiftool=false", "scan", dir); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, database.DefaultFileName)); err != nil {
		t.Fatalf("Expected library to be created: %v", err)
	}

	out, err := runCommand(t, "tags", dir)
	if err != nil {
		t.Fatalf("tags failed: %v", err)
	}
	for _, want := range []string{"Last run", "TAG", "2023", "-33.868800, 151.209333", database.UnknownLocation} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in tags output:\n%s", want, out)
		}
	}

	out, err = runCommand(t, "tags", dir, "2023")
	if err != nil {
		t.Fatalf("tags <tag> failed: %v", err)
	}
	if !strings.Contains(out, "beach.jpg") || !strings.Contains(out, "city.jpg") {
		t.Errorf("Expected both photos under 2023:\n%s", out)
	}
	if strings.Index(out, "beach.jpg") > strings.Index(out, "city.jpg") {
		t.Errorf("Expected photos ordered by capture time:\n%s", out)
	}
}

func TestScanCustomDatabaseName(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dir := t.TempDir()
	exiftest.WriteFile(t, dir, "a.png", exiftest.PlainJPEG())

	if _, err := runCommand(t, "--exiftool=false", "--database-name=tags.db", "scan", dir); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tags.db")); err != nil {
		t.Errorf("Expected tags.db: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, database.DefaultFileName)); !os.IsNotExist(err) {
		t.Error("Expected no default library file")
	}
}

func TestTagsWithoutLibrary(t *testing.T) {
	_, err := runCommand(t, "tags", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no tag library") {
		t.Errorf("Expected missing library error, got %v", err)
	}
}

func TestScanArguments(t *testing.T) {
	if _, err := runCommand(t, "scan"); err == nil {
		t.Error("Expected error without a folder")
	}
	if _, err := runCommand(t, "scan", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for a missing folder")
	}
}

func TestResolveFolder(t *testing.T) {
	dir := t.TempDir()
	file := exiftest.WriteFile(t, dir, "a.jpg", exiftest.PlainJPEG())

	abs, err := resolveFolder(dir)
	if err != nil || abs != dir {
		t.Errorf("Expected %s, got %s (%v)", dir, abs, err)
	}
	if _, err := resolveFolder(file); err == nil {
		t.Error("Expected error for a file")
	}
}

func TestRunResult(t *testing.T) {
	failure := errors.New("disk full")

	tests := []struct {
		phase   indexer.Phase
		err     error
		wantErr error
	}{
		{indexer.PhaseDone, nil, nil},
		{indexer.PhaseCancelled, nil, errRunCancelled},
		{indexer.PhaseFailed, failure, failure},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			err := runResult(indexer.Summary{Phase: tt.phase, Err: tt.err})
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWriteTagTable(t *testing.T) {
	var buf bytes.Buffer
	err := writeTagTable(&buf, []database.Tag{{Name: "2022", PhotoCount: 3}, {Name: "Unknown Location", PhotoCount: 12}})
	if err != nil {
		t.Fatalf("writeTagTable failed: %v", err)
	}

	want := "TAG               PHOTOS\n2022              3\nUnknown Location  12\n"
	if buf.String() != want {
		t.Errorf("Expected table\n%q\ngot\n%q", want, buf.String())
	}
}

func TestDiagnoseCommand(t *testing.T) {
	dir := t.TempDir()
	tagged := exiftest.WriteJPEG(t, dir, "beach.jpg", exiftest.Fixture{
		DateTimeOriginal: "2023:05:10 14:22:01",
		GPS:              exiftest.Sydney(),
	})

	out, err := runCommand(t, "--exiftool=false", "diagnose", tagged)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	for _, want := range []string{
		"[goexif]",
		"Metadata block: true",
		"GPS:            resolved",
		"Date extracted via goexif",
		"[merged]",
		"Capture time:   2023-05-10T14:22:01 (goexif)",
		"Location:       -33.868800, 151.209333",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in diagnose output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[exiftool]") {
		t.Error("Expected exiftool to be skipped when disabled")
	}
}

func TestDiagnoseWithoutGPS(t *testing.T) {
	dir := t.TempDir()
	plain := exiftest.WriteFile(t, dir, "plain.jpg", exiftest.PlainJPEG())

	out, err := runCommand(t, "--exiftool=false", "diagnose", plain)
	if err != nil {
		t.Fatalf("diagnose failed: %v", err)
	}
	for _, want := range []string{"Metadata block: false", "GPS:            absent", "(mtime)", "Location:       -"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in diagnose output:\n%s", want, out)
		}
	}
}

func TestDiagnoseArguments(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCommand(t, "--exiftool=false", "diagnose", filepath.Join(dir, "missing.jpg")); err == nil {
		t.Error("Expected error for a missing file")
	}
	if _, err := runCommand(t, "--exiftool=false", "diagnose", dir); err == nil {
		t.Error("Expected error for a directory")
	}
}
