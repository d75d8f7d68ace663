package database

import (
	"errors"
	"testing"
	"time"

	"autotagger/internal/metrics"
)

// TestRecordQuery tests the recordQuery helper function.
func TestRecordQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		operation string
		err       error
	}{
		{
			name:      "successful query",
			operation: "test_operation",
			err:       nil,
		},
		{
			name:      "failed query",
			operation: "test_operation",
			err:       errors.New("test error"),
		},
		{
			name:      "empty operation name",
			operation: "",
			err:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start := time.Now()
			time.Sleep(1 * time.Millisecond)

			// Should not panic
			recordQuery(tt.operation, start, tt.err)

			if elapsed := time.Since(start); elapsed < 1*time.Millisecond {
				t.Error("recordQuery should have measured non-zero duration")
			}
		})
	}
}

func TestMetricsIntegration(t *testing.T) {
	t.Parallel()

	if metrics.DBQueryTotal == nil {
		t.Skip("Metrics not initialized")
	}

	start := time.Now()
	recordQuery("test_integration", start, nil)
	recordQuery("test_integration", start, errors.New("test error"))
}

func TestDefaultTimeoutConstant(t *testing.T) {
	t.Parallel()

	if defaultTimeout != 5*time.Second {
		t.Errorf("defaultTimeout = %v, want 5 seconds", defaultTimeout)
	}
}

func TestLibraryConstants(t *testing.T) {
	t.Parallel()

	if DefaultFileName != "photo_library.db" {
		t.Errorf("Expected DefaultFileName photo_library.db, got %s", DefaultFileName)
	}
	if UnknownLocation != "Unknown Location" {
		t.Errorf("Expected UnknownLocation 'Unknown Location', got %s", UnknownLocation)
	}
}

func TestPhotoYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		createdAt string
		want      string
	}{
		{"2023-05-10T14:22:01", "2023"},
		{"1999-12-31T23:59:59", "1999"},
		{"2024", "2024"},
		{"202", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.createdAt, func(t *testing.T) {
			p := Photo{CreatedAt: tt.createdAt}
			if got := p.Year(); got != tt.want {
				t.Errorf("Expected year %q, got %q", tt.want, got)
			}
		})
	}
}

// BenchmarkRecordQuery benchmarks the query recording overhead
func BenchmarkRecordQuery(b *testing.B) {
	operation := "benchmark_operation"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		start := time.Now()
		recordQuery(operation, start, nil)
	}
}
