package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestGetMetadataIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _ := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	value, err := db.GetMetadata(ctx, "nonexistent")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows for non-existent key, got %v", err)
	}
	if value != "" {
		t.Errorf("Expected empty string with error, got %s", value)
	}

	if err := db.SetMetadata(ctx, "testkey", "testvalue"); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}

	value, err = db.GetMetadata(ctx, "testkey")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if value != "testvalue" {
		t.Errorf("Expected value 'testvalue', got %s", value)
	}

	if err := db.SetMetadata(ctx, "testkey", "value2"); err != nil {
		t.Fatalf("SetMetadata update failed: %v", err)
	}
	value, _ = db.GetMetadata(ctx, "testkey")
	if value != "value2" {
		t.Errorf("Expected updated value 'value2', got %s", value)
	}
}

func TestLastRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _ := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, ok, err := db.GetLastRun(ctx)
	if err != nil {
		t.Fatalf("GetLastRun failed: %v", err)
	}
	if ok {
		t.Error("Expected no last run in a fresh library")
	}

	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if err := db.SetLastRun(ctx, LastRun{At: at, Photos: 10, Tags: 5, Errors: 1}); err != nil {
		t.Fatalf("SetLastRun failed: %v", err)
	}

	run, ok, err := db.GetLastRun(ctx)
	if err != nil {
		t.Fatalf("GetLastRun failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected last run to be recorded")
	}
	if !run.At.Equal(at) {
		t.Errorf("Expected At %v, got %v", at, run.At)
	}
	if run.Photos != 10 || run.Tags != 5 || run.Errors != 1 {
		t.Errorf("Expected 10/5/1, got %d/%d/%d", run.Photos, run.Tags, run.Errors)
	}
}

func TestLastRunInvalidValue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, _ := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	if err := db.SetMetadata(ctx, keyLastRunAt, "yesterday"); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}

	if _, _, err := db.GetLastRun(ctx); err == nil {
		t.Error("Expected error for malformed last_run_at")
	}
}
