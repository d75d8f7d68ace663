// Package metrics provides Prometheus instrumentation for the autotagger.
//
// All metrics are prefixed with "autotagger_" and registered on the default
// registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Database Metrics
//
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBTransactionsTotal: Counter of transactions by commit/rollback
//   - DBSizeBytes: Gauge of the library database file size
//
// ## Pipeline Metrics
//
//   - PipelineRunsTotal: Counter of finished runs by terminal phase
//   - PipelineRunning: Gauge indicating if a run is active
//   - PipelinePhaseDuration: Histogram of time spent per phase
//   - PipelineFilesScanned, PipelinePhotosPersisted, PipelineTagsCreated: work counters
//   - PipelineErrors: Counter of per-file errors by phase
//
// ## Metadata Extraction Metrics
//
//   - ExifReadsTotal: Counter of reader invocations by reader and outcome
//   - ExifExtractionDuration: Histogram of per-file extraction time
//   - ExifDateSourceTotal: Counter of capture timestamps by supplying source
//   - ExifGPSStatusTotal: Counter of extractions by final GPS status
//
// ## Library Metrics
//
// Updated by the [Collector] from a [StatsProvider]:
//
//	collector := metrics.NewCollector(controller, 1*time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Share of files that needed the modification-time fallback:
//
//	sum(rate(autotagger_exif_date_source_total{source="mtime"}[1h])) /
//	sum(rate(autotagger_exif_date_source_total[1h]))
//
// P95 extraction latency:
//
//	histogram_quantile(0.95, sum(rate(autotagger_exif_extraction_duration_seconds_bucket[5m])) by (le))
package metrics
