package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autotagger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autotagger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autotagger_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_db_transactions_total",
			Help: "Total number of database transactions by outcome",
		},
		[]string{"status"}, // "commit", "rollback"
	)

	DBSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autotagger_db_size_bytes",
			Help: "Size of the most recently opened library database in bytes",
		},
	)
)

// Pipeline metrics
var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_pipeline_runs_total",
			Help: "Total number of tagging runs by terminal phase",
		},
		[]string{"outcome"}, // "done", "cancelled", "failed"
	)

	PipelineRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autotagger_pipeline_running",
			Help: "Whether a tagging run is currently active (1 = running, 0 = idle)",
		},
	)

	PipelineLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autotagger_pipeline_last_run_timestamp",
			Help: "Unix timestamp of the last tagging run completion",
		},
	)

	PipelineLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autotagger_pipeline_last_run_duration_seconds",
			Help: "Duration of the last tagging run in seconds",
		},
	)

	PipelinePhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autotagger_pipeline_phase_duration_seconds",
			Help:    "Time spent in each pipeline phase",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"phase"},
	)

	PipelineFilesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autotagger_pipeline_files_scanned_total",
			Help: "Total number of image files discovered by scans",
		},
	)

	PipelinePhotosPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autotagger_pipeline_photos_persisted_total",
			Help: "Total number of photo rows written",
		},
	)

	PipelineTagsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autotagger_pipeline_tags_created_total",
			Help: "Total number of tag rows created",
		},
	)

	PipelineErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_pipeline_errors_total",
			Help: "Total number of per-file errors by phase",
		},
		[]string{"phase"},
	)
)

// Library metrics
var (
	LibraryPhotosTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autotagger_library_photos",
			Help: "Number of photo rows in the most recently tagged library",
		},
	)

	LibraryTagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autotagger_library_tags",
			Help: "Number of tag rows in the most recently tagged library",
		},
	)

	LibraryLinksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "autotagger_library_tag_links",
			Help: "Number of photo to tag links in the most recently tagged library",
		},
	)
)

// Metadata extraction metrics
var (
	ExifReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_exif_reads_total",
			Help: "Total number of metadata reader invocations by reader and outcome",
		},
		[]string{"reader", "outcome"}, // outcome: "found", "empty", "error", "panic"
	)

	ExifExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autotagger_exif_extraction_duration_seconds",
			Help:    "Time to extract metadata for a single file across all readers",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	ExifDateSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_exif_date_source_total",
			Help: "Total number of capture timestamps by the source that supplied them",
		},
		[]string{"source"}, // reader name, "mtime" or "now"
	)

	ExifGPSStatusTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_exif_gps_status_total",
			Help: "Total number of extractions by final GPS status",
		},
		[]string{"status"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries after stale file handle errors",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotagger_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors observed",
		},
		[]string{"operation"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "autotagger_filesystem_retry_duration_seconds",
			Help:    "Total time spent in a filesystem operation including retries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation"},
	)
)

// Application info
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "autotagger_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
