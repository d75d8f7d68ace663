package workers

import (
	"runtime"
)

const (
	// DefaultExtraction is the extraction pool size used when nothing is configured.
	DefaultExtraction = 4

	// MaxExtraction caps any configured pool size.
	MaxExtraction = 64

	// Auto requests a pool sized from GOMAXPROCS.
	Auto = 0
)

// Count returns the optimal number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit.
func Count(multiplier float64, limit int) int {
	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
// The limit parameter caps the maximum number of workers.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// Extraction resolves the configured metadata extraction pool size.
// Auto sizes the pool for I/O-bound work; negative values fall back to
// DefaultExtraction; anything above MaxExtraction is capped.
func Extraction(configured int) int {
	switch {
	case configured == Auto:
		return ForIO(MaxExtraction)
	case configured < 0:
		return DefaultExtraction
	case configured > MaxExtraction:
		return MaxExtraction
	default:
		return configured
	}
}
