package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Filesystem retry metrics (per retry-operation) ---
	for _, op := range []string{"stat", "open"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetryDuration.WithLabelValues(op)
	}

	// --- Pipeline outcomes and phases ---
	for _, outcome := range []string{"done", "cancelled", "failed"} {
		PipelineRunsTotal.WithLabelValues(outcome)
	}
	for _, phase := range []string{"scanning", "extracting", "persisting_photos", "persisting_tags"} {
		PipelinePhaseDuration.WithLabelValues(phase)
		PipelineErrors.WithLabelValues(phase)
	}

	// --- Metadata readers ---
	for _, reader := range []string{"goexif", "exiftool"} {
		for _, outcome := range []string{"found", "empty", "error", "panic"} {
			ExifReadsTotal.WithLabelValues(reader, outcome)
		}
		ExifDateSourceTotal.WithLabelValues(reader)
	}
	ExifDateSourceTotal.WithLabelValues("mtime")
	ExifDateSourceTotal.WithLabelValues("now")

	for _, status := range []string{"unknown", "absent", "incomplete", "conversion_failed", "resolved"} {
		ExifGPSStatusTotal.WithLabelValues(status)
	}

	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "upsert_photo", "get_or_create_tag",
		"link_photo_tag", "list_tags", "photos_by_tag", "get_photo", "photo_tags", "counts",
		"get_metadata", "set_metadata", "begin_transaction", "commit", "rollback"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, status := range []string{"commit", "rollback"} {
		DBTransactionsTotal.WithLabelValues(status)
	}
}
